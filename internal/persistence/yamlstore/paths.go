package yamlstore

import (
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"strings"
)

const (
	inspectorsPrefix      = "inspectors"
	inspectorEmailPrefix  = "inspector_email_index"
	tasksPrefix           = "tasks"
	assignmentsPrefix     = "task_assignments"
	assignmentIndexPrefix = "task_assignment_index"
)

func docPath(prefix, id string) string {
	return fmt.Sprintf("%s/%s.yaml", prefix, id)
}

// emailPath hex-encodes the address so any character is safe in a key.
func emailPath(email string) string {
	return docPath(inspectorEmailPrefix, hex.EncodeToString([]byte(email)))
}

func idFromPath(p string) string {
	return strings.TrimSuffix(path.Base(p), ".yaml")
}

func sortPaths(paths []string) {
	sort.Strings(paths)
}

// indexEntry is the body of an index document: the id owning the unique key.
type indexEntry struct {
	ID string `yaml:"id"`
}
