package devbackend

import (
	"net/http"
	"slices"
	"strings"

	"github.com/jrsteele09/academy-admin/users"
	"github.com/rs/zerolog/log"
)

// actionStatus maps item actions that only change a status field.
var actionStatus = map[string]struct {
	field string
	value any
}{
	"approve": {"status", "approved"},
	"suspend": {"status", "suspended"},
	"read":    {"read", true},
}

func (s *Server) collection(w http.ResponseWriter, r *http.Request) (*collection, bool) {
	c, ok := s.items[r.PathValue("collection")]
	if !ok {
		writeError(w, http.StatusNotFound, "Resource not found", "")
	}
	return c, ok
}

func (s *Server) ListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collection(w, r)
		if !ok {
			return
		}
		writeData(w, http.StatusOK, c.List(r.URL.Query()))
	}
}

func (s *Server) CreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collection(w, r)
		if !ok {
			return
		}
		var fields item
		if !decodeBody(w, r, &fields) {
			return
		}
		if len(fields) == 0 {
			writeError(w, http.StatusBadRequest, "Request body is required", "")
			return
		}
		writeData(w, http.StatusCreated, c.Insert(fields))
	}
}

// GetHandler serves /{collection}/{id} and /{collection}/stats.
func (s *Server) GetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collection(w, r)
		if !ok {
			return
		}
		id := r.PathValue("id")
		if id == "stats" {
			writeData(w, http.StatusOK, map[string]int{"total": c.Count(nil)})
			return
		}
		doc, found := c.Get(id)
		if !found {
			writeError(w, http.StatusNotFound, "Item not found", "")
			return
		}
		writeData(w, http.StatusOK, doc)
	}
}

func (s *Server) UpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collection(w, r)
		if !ok {
			return
		}
		var fields item
		if !decodeBody(w, r, &fields) {
			return
		}
		doc, found := c.Update(r.PathValue("id"), fields)
		if !found {
			writeError(w, http.StatusNotFound, "Item not found", "")
			return
		}
		writeData(w, http.StatusOK, doc)
	}
}

func (s *Server) DeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collection(w, r)
		if !ok {
			return
		}
		if !c.Delete(r.PathValue("id")) {
			writeError(w, http.StatusNotFound, "Item not found", "")
			return
		}
		writeData(w, http.StatusOK, map[string]string{"message": "Deleted"})
	}
}

// GetActionHandler returns a sub resource of an item, e.g. /coaches/{id}/students.
func (s *Server) GetActionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collection(w, r)
		if !ok {
			return
		}
		doc, found := c.Get(r.PathValue("id"))
		if !found {
			writeError(w, http.StatusNotFound, "Item not found", "")
			return
		}
		v, ok := doc[r.PathValue("action")]
		if !ok {
			v = []any{}
		}
		writeData(w, http.StatusOK, v)
	}
}

// ActionHandler applies an item action such as approve, read, schedule or notify.
func (s *Server) ActionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collection(w, r)
		if !ok {
			return
		}
		var body any
		if !decodeBody(w, r, &body) {
			return
		}

		id, action := r.PathValue("id"), r.PathValue("action")
		if action == "notify" {
			s.notifyParticipants(w, c, id, body)
			return
		}

		doc, found := c.Mutate(id, func(doc item) {
			if st, ok := actionStatus[action]; ok {
				doc[st.field] = st.value
				return
			}
			if body != nil {
				doc[action] = body
			}
		})
		if !found {
			writeError(w, http.StatusNotFound, "Item not found", "")
			return
		}
		writeData(w, http.StatusOK, doc)
	}
}

func (s *Server) notifyParticipants(w http.ResponseWriter, c *collection, id string, body any) {
	if _, found := c.Get(id); !found {
		writeError(w, http.StatusNotFound, "Item not found", "")
		return
	}
	fields, _ := body.(map[string]any)
	if fields == nil {
		fields = item{}
	}
	fields["tournament"] = id
	fields["read"] = false
	writeData(w, http.StatusCreated, s.items["notifications"].Insert(fields))
}

// LinkHandler adds or removes sub to the id list stored under action,
// e.g. POST /coaches/{id}/students/{studentId}.
func (s *Server) LinkHandler(add bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := s.collection(w, r)
		if !ok {
			return
		}
		action, sub := r.PathValue("action"), r.PathValue("sub")
		doc, found := c.Mutate(r.PathValue("id"), func(doc item) {
			ids, _ := doc[action].([]any)
			idx := slices.Index(ids, any(sub))
			switch {
			case add && idx < 0:
				ids = append(ids, sub)
			case !add && idx >= 0:
				ids = slices.Delete(ids, idx, idx+1)
			}
			doc[action] = ids
		})
		if !found {
			writeError(w, http.StatusNotFound, "Item not found", "")
			return
		}
		writeData(w, http.StatusOK, doc)
	}
}

// CreateCoachHandler also creates the coach's login account.
func (s *Server) CreateCoachHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields item
		if !decodeBody(w, r, &fields) {
			return
		}
		name, _ := fields["name"].(string)
		email, _ := fields["email"].(string)
		password, _ := fields["password"].(string)
		if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
			writeError(w, http.StatusBadRequest, "Name, email and password are required", "")
			return
		}
		if existing, err := s.users.GetByEmail(email); err == nil && existing != nil {
			writeError(w, http.StatusBadRequest, "Email already registered", "")
			return
		}

		hash, err := users.HashPassword(password)
		if err != nil {
			log.Err(err).Msg("unable to hash coach password")
			writeError(w, http.StatusInternalServerError, "Unable to create coach", "")
			return
		}
		account := &users.User{Name: name, Email: email, Role: users.RoleCoach, PasswordHash: hash}
		if err := s.users.Upsert(account); err != nil {
			writeError(w, http.StatusInternalServerError, "Unable to create coach", "")
			return
		}

		delete(fields, "password")
		delete(fields, "passwordConfirm")
		fields["user"] = account.ID
		fields["status"] = "pending"
		writeData(w, http.StatusCreated, s.items["coaches"].Insert(fields))
	}
}

func (s *Server) GenerateReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params any
		if !decodeBody(w, r, &params) {
			return
		}
		report := s.items["reports"].Insert(item{
			"type":   r.PathValue("type"),
			"params": params,
			"status": "completed",
		})
		writeData(w, http.StatusCreated, report)
	}
}

func (s *Server) SystemNotificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields item
		if !decodeBody(w, r, &fields) {
			return
		}
		if title, _ := fields["title"].(string); title == "" {
			writeError(w, http.StatusBadRequest, "Title is required", "")
			return
		}
		fields["type"] = "system"
		fields["read"] = false
		writeData(w, http.StatusCreated, s.items["notifications"].Insert(fields))
	}
}

func (s *Server) MarkAllReadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := s.items["notifications"].UpdateWhere(func(doc item) bool { return !isRead(doc) }, item{"read": true})
		writeData(w, http.StatusOK, map[string]int{"modified": n})
	}
}

func (s *Server) DeleteReadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := s.items["notifications"].DeleteWhere(isRead)
		writeData(w, http.StatusOK, map[string]int{"deleted": n})
	}
}

func (s *Server) UnreadCountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := s.items["notifications"].Count(func(doc item) bool { return !isRead(doc) })
		writeData(w, http.StatusOK, map[string]int{"count": n})
	}
}
