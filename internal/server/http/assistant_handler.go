package httpserver

import (
	"net/http"
	"strings"
)

// assistantChat handles POST /assistant/chat. The assistant always answers,
// so failures past request validation still produce a 200 with a fallback reply.
func (s *Server) assistantChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(req.Message) > maxChatMessageLen {
		writeError(w, http.StatusBadRequest, "message is too long")
		return
	}
	if len(req.History) > maxChatHistory {
		req.History = req.History[len(req.History)-maxChatHistory:]
	}
	if s.deps.Assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	reply := s.deps.Assistant.Reply(r.Context(), req.History, req.Message)
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
