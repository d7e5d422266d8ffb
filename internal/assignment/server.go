package assignment

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/inspectguild/pkg/cerr"
	"github.com/kazz187/inspectguild/pkg/clog"
	"github.com/kazz187/inspectguild/pkg/reqschema"
)

var assignSchema = reqschema.MustCompile("assign_task", `{
	"type": "object",
	"required": ["scheduled_datetime"],
	"properties": {
		"scheduled_datetime": {"type": "string", "format": "date-time"},
		"status": {"enum": ["pending", "in_progress", "completed"]}
	}
}`)

var finishSchema = reqschema.MustCompile("finish_task_assignment", `{
	"type": "object",
	"required": ["rating", "evaluation_datetime"],
	"properties": {
		"rating": {"type": "number"},
		"rating_description": {"type": "string", "maxLength": 500},
		"evaluation_datetime": {"type": "string", "format": "date-time"}
	}
}`)

var updateSchema = reqschema.MustCompile("update_task_assignment", `{
	"type": "object",
	"properties": {
		"scheduled_datetime": {"type": "string", "format": "date-time"},
		"status": {"enum": ["pending", "in_progress", "completed"]}
	}
}`)

type assignRequest struct {
	ScheduledAt time.Time `json:"scheduled_datetime"`
	Status      Status    `json:"status,omitempty"`
}

type Server struct {
	engine *Engine
}

func NewServer(engine *Engine) *Server {
	return &Server{engine: engine}
}

func (s *Server) Routes(r chi.Router) {
	r.Route("/task_assignment", func(r chi.Router) {
		r.Get("/all", s.list)
		r.Get("/inspector/{inspectorID}/all", s.listByInspector)
		r.Get("/inspector/{inspectorID}/unfinished/all", s.listUnfinishedByInspector)
		r.Get("/inspector/{inspectorID}/finished/all", s.listFinishedByInspector)
		r.Post("/assign/inspector/{inspectorID}/task/{taskID}", s.assign)
		r.Get("/{assignmentID}", s.get)
		r.Post("/{assignmentID}/finish", s.finish)
		r.Put("/{assignmentID}", s.update)
		r.Delete("/{assignmentID}", s.delete)
	})
}

// assignmentID reads the path parameter and tags the request log with it.
func assignmentID(r *http.Request) string {
	id := chi.URLParam(r, "assignmentID")
	clog.AddEntityID(r.Context(), "assignment", id)
	return id
}

func inspectorID(r *http.Request) string {
	id := chi.URLParam(r, "inspectorID")
	clog.AddEntityID(r.Context(), "inspector", id)
	return id
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetJSONResponse(r.Context(), v)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	as, err := s.engine.List(r.Context())
	s.respond(w, r, as, err)
}

func (s *Server) listByInspector(w http.ResponseWriter, r *http.Request) {
	as, err := s.engine.ListByInspector(r.Context(), inspectorID(r))
	s.respond(w, r, as, err)
}

func (s *Server) listUnfinishedByInspector(w http.ResponseWriter, r *http.Request) {
	as, err := s.engine.ListUnfinishedByInspector(r.Context(), inspectorID(r))
	s.respond(w, r, as, err)
}

func (s *Server) listFinishedByInspector(w http.ResponseWriter, r *http.Request) {
	as, err := s.engine.ListFinishedByInspector(r.Context(), inspectorID(r))
	s.respond(w, r, as, err)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	a, err := s.engine.Get(r.Context(), assignmentID(r))
	s.respond(w, r, a, err)
}

func (s *Server) assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := assignSchema.Decode(r.Body, &req); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	taskID := chi.URLParam(r, "taskID")
	clog.AddEntityID(r.Context(), "task", taskID)
	a, err := s.engine.Assign(r.Context(), AssignInput{
		InspectorID: inspectorID(r),
		TaskID:      taskID,
		ScheduledAt: req.ScheduledAt,
		Status:      req.Status,
	})
	s.respond(w, r, a, err)
}

func (s *Server) finish(w http.ResponseWriter, r *http.Request) {
	var in FinishInput
	if err := finishSchema.Decode(r.Body, &in); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	a, err := s.engine.Finish(r.Context(), assignmentID(r), in)
	s.respond(w, r, a, err)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var patch Patch
	if err := updateSchema.Decode(r.Body, &patch); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	a, err := s.engine.Update(r.Context(), assignmentID(r), patch)
	s.respond(w, r, a, err)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Delete(r.Context(), assignmentID(r)); err != nil {
		cerr.SetJSONError(r.Context(), err)
		return
	}
	cerr.SetNoContent(r.Context())
}
