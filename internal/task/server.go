package task

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/inspectguild/pkg/cerr"
	"github.com/kazz187/inspectguild/pkg/clog"
	"github.com/kazz187/inspectguild/pkg/reqschema"
)

var createSchema = reqschema.MustCompile("create_task", `{
	"type": "object",
	"required": ["title", "deadline", "location"],
	"properties": {
		"title": {"type": "string", "minLength": 1, "maxLength": 100},
		"description": {"type": "string", "maxLength": 500},
		"deadline": {"type": "string", "format": "date-time"},
		"location": {"type": "string", "maxLength": 100}
	}
}`)

var updateSchema = reqschema.MustCompile("update_task", `{
	"type": "object",
	"properties": {
		"title": {"type": "string", "minLength": 1, "maxLength": 100},
		"description": {"type": "string", "maxLength": 500},
		"deadline": {"type": "string", "format": "date-time"},
		"location": {"type": "string", "maxLength": 100}
	}
}`)

type Server struct {
	svc *Service
}

func NewServer(svc *Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/task/all", s.list)
	r.Get("/task/available/all", s.listAvailable)
	r.Post("/task", s.create)
	r.Get("/task/{taskID}", s.get)
	r.Put("/task/{taskID}", s.update)
	r.Delete("/task/{taskID}", s.delete)
}

func pathID(r *http.Request) string {
	id := chi.URLParam(r, "taskID")
	clog.AddEntityID(r.Context(), "task", id)
	return id
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.List(r.Context())
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), tasks)
}

func (s *Server) listAvailable(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.ListAvailable(r.Context())
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), tasks)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Get(r.Context(), pathID(r))
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), t)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := createSchema.Decode(r.Body, &in); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	t, err := s.svc.Create(r.Context(), in)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), t)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var patch Patch
	if err := updateSchema.Decode(r.Body, &patch); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	t, err := s.svc.Update(r.Context(), pathID(r), patch)
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), t)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), pathID(r)); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetNoContent(r.Context())
}
