package inspector

import "time"

type Timezone string

const (
	TimezoneMadrid     Timezone = "Madrid"
	TimezoneMexicoCity Timezone = "Mexico city"
	TimezoneUK         Timezone = "UK"
)

var Timezones = []Timezone{TimezoneMadrid, TimezoneMexicoCity, TimezoneUK}

func (tz Timezone) Valid() bool {
	for _, v := range Timezones {
		if tz == v {
			return true
		}
	}
	return false
}

type Inspector struct {
	ID        string    `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	Email     string    `yaml:"email,omitempty" json:"email,omitempty"`
	Timezone  Timezone  `yaml:"timezone" json:"timezone"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
}

// Patch holds the fields a partial update may overwrite. Nil fields are left untouched.
type Patch struct {
	Name     *string   `json:"name,omitempty"`
	Email    *string   `json:"email,omitempty"`
	Timezone *Timezone `json:"timezone,omitempty"`
}

func (p Patch) Apply(i *Inspector) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Email != nil {
		i.Email = *p.Email
	}
	if p.Timezone != nil {
		i.Timezone = *p.Timezone
	}
}
