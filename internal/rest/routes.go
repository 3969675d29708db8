package rest

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

// ServerInterfaceWrapper binds path and query parameters before calling the
// typed handler methods.
type ServerInterfaceWrapper struct {
	Handler *Handler
}

// Routes mounts the authenticated chat API.
func (h *Handler) Routes(r chi.Router) {
	wrapper := ServerInterfaceWrapper{Handler: h}

	r.Route("/api/chat", func(r chi.Router) {
		r.Get("/connect-token", h.GetConnectToken)
		r.Post("/media", h.UploadMedia)

		r.Route("/rooms/{room_id}", func(r chi.Router) {
			r.Post("/read", wrapper.MarkRead)

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", wrapper.SendMessage)
				r.Get("/", wrapper.GetMessages)
				r.Get("/search", wrapper.SearchMessages)
				r.Get("/pinned", wrapper.GetPinnedMessages)

				r.Get("/{message_id}", wrapper.GetMessage)
				r.Patch("/{message_id}", wrapper.EditMessage)
				r.Delete("/{message_id}", wrapper.DeleteMessage)
				r.Post("/{message_id}/reactions", wrapper.ReactToMessage)
				r.Post("/{message_id}/pin", wrapper.PinMessage)
			})
		})
	})
}

func (siw *ServerInterfaceWrapper) SendMessage(w http.ResponseWriter, r *http.Request) {
	siw.Handler.SendMessage(w, r, chi.URLParam(r, "room_id"))
}

func (siw *ServerInterfaceWrapper) GetMessages(w http.ResponseWriter, r *http.Request) {
	var params GetMessagesParams

	if err := runtime.BindQueryParameter("form", true, false, "cursor", r.URL.Query(), &params.Cursor); err != nil {
		siw.invalidParam(w, "cursor", err)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.invalidParam(w, "limit", err)
		return
	}
	var threadID *string
	if err := runtime.BindQueryParameter("form", true, false, "thread_id", r.URL.Query(), &threadID); err != nil {
		siw.invalidParam(w, "thread_id", err)
		return
	}
	if threadID != nil {
		id, err := uuid.Parse(*threadID)
		if err != nil {
			siw.invalidParam(w, "thread_id", err)
			return
		}
		params.ThreadID = &id
	}

	siw.Handler.GetMessages(w, r, chi.URLParam(r, "room_id"), params)
}

func (siw *ServerInterfaceWrapper) SearchMessages(w http.ResponseWriter, r *http.Request) {
	var params SearchMessagesParams

	if err := runtime.BindQueryParameter("form", true, true, "q", r.URL.Query(), &params.Q); err != nil {
		siw.invalidParam(w, "q", err)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "cursor", r.URL.Query(), &params.Cursor); err != nil {
		siw.invalidParam(w, "cursor", err)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.invalidParam(w, "limit", err)
		return
	}

	siw.Handler.SearchMessages(w, r, chi.URLParam(r, "room_id"), params)
}

func (siw *ServerInterfaceWrapper) GetPinnedMessages(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetPinnedMessages(w, r, chi.URLParam(r, "room_id"))
}

func (siw *ServerInterfaceWrapper) GetMessage(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.messageID(w, r); ok {
		siw.Handler.GetMessage(w, r, chi.URLParam(r, "room_id"), id)
	}
}

func (siw *ServerInterfaceWrapper) EditMessage(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.messageID(w, r); ok {
		siw.Handler.EditMessage(w, r, chi.URLParam(r, "room_id"), id)
	}
}

func (siw *ServerInterfaceWrapper) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.messageID(w, r); ok {
		siw.Handler.DeleteMessage(w, r, chi.URLParam(r, "room_id"), id)
	}
}

func (siw *ServerInterfaceWrapper) ReactToMessage(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.messageID(w, r); ok {
		siw.Handler.ReactToMessage(w, r, chi.URLParam(r, "room_id"), id)
	}
}

func (siw *ServerInterfaceWrapper) PinMessage(w http.ResponseWriter, r *http.Request) {
	if id, ok := siw.messageID(w, r); ok {
		siw.Handler.PinMessage(w, r, chi.URLParam(r, "room_id"), id)
	}
}

func (siw *ServerInterfaceWrapper) MarkRead(w http.ResponseWriter, r *http.Request) {
	siw.Handler.MarkRead(w, r, chi.URLParam(r, "room_id"))
}

func (siw *ServerInterfaceWrapper) messageID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "message_id"))
	if err != nil {
		siw.invalidParam(w, "message_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (siw *ServerInterfaceWrapper) invalidParam(w http.ResponseWriter, name string, err error) {
	siw.Handler.writeError(w, fmt.Sprintf("invalid format for parameter %s: %v", name, err), http.StatusBadRequest)
}
