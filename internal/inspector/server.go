package inspector

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/inspectguild/pkg/cerr"
	"github.com/kazz187/inspectguild/pkg/clog"
	"github.com/kazz187/inspectguild/pkg/reqschema"
)

var createSchema = reqschema.MustCompile("create_inspector", `{
	"type": "object",
	"required": ["name", "timezone"],
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 50},
		"email": {"type": "string", "maxLength": 50, "anyOf": [{"format": "email"}, {"maxLength": 0}]},
		"timezone": {"enum": ["Madrid", "Mexico city", "UK"]}
	}
}`)

var updateSchema = reqschema.MustCompile("update_inspector", `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 50},
		"email": {"type": "string", "maxLength": 50, "anyOf": [{"format": "email"}, {"maxLength": 0}]},
		"timezone": {"enum": ["Madrid", "Mexico city", "UK"]}
	}
}`)

type Server struct {
	svc *Service
}

func NewServer(svc *Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/inspector/all", s.list)
	r.Post("/inspector", s.create)
	r.Get("/inspector/{inspectorID}", s.get)
	r.Put("/inspector/{inspectorID}", s.update)
	r.Delete("/inspector/{inspectorID}", s.delete)
}

func pathID(r *http.Request) string {
	id := chi.URLParam(r, "inspectorID")
	clog.AddEntityID(r.Context(), "inspector", id)
	return id
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	inspectors, err := s.svc.List(r.Context())
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), inspectors)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	i, err := s.svc.Get(r.Context(), pathID(r))
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), i)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := createSchema.Decode(r.Body, &in); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	i, err := s.svc.Create(r.Context(), in)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), i)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var patch Patch
	if err := updateSchema.Decode(r.Body, &patch); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	i, err := s.svc.Update(r.Context(), pathID(r), patch)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), i)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), pathID(r)); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetNoContent(r.Context())
}
