package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/decks/internal/services"
)

const (
	agentsWSReadLimit = 1 << 20
	agentsWSIdle      = 60 * time.Minute
)

var agentsWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// agentsWSInMessage is the JSON shape sent from the client.
type agentsWSInMessage struct {
	Type   string          `json:"type"`
	ID     string          `json:"id,omitempty"`
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

// agentsWSOutMessage is the JSON shape sent to the client.
type agentsWSOutMessage struct {
	Type   string      `json:"type"`
	ID     string      `json:"id,omitempty"`
	Action string      `json:"action,omitempty"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// AgentsWS handles GET /v1/ws, a WebSocket endpoint for long-running agent calls.
// Each {"type":"call"} message gets one {"type":"result"} reply, in order.
func (h *Handler) AgentsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := agentsWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("agents ws upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(agentsWSReadLimit)
	conn.SetReadDeadline(time.Now().Add(agentsWSIdle))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(agentsWSIdle))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			log.Debug().Err(err).Msg("agents ws read")
			return
		}
		conn.SetReadDeadline(time.Now().Add(agentsWSIdle))

		var in agentsWSInMessage
		if err := json.Unmarshal(raw, &in); err != nil {
			_ = writeWSJSON(conn, agentsWSOutMessage{Type: "result", Error: "invalid JSON: " + err.Error()})
			continue
		}
		if in.Type != "call" {
			_ = writeWSJSON(conn, agentsWSOutMessage{Type: "result", ID: in.ID, Error: "expected type: call"})
			continue
		}

		out := agentsWSOutMessage{Type: "result", ID: in.ID, Action: in.Action}
		out.Result, err = h.callAgent(r.Context(), in.Action, in.Params)
		if err != nil {
			out.Error = err.Error()
		}
		if err := writeWSJSON(conn, out); err != nil {
			log.Debug().Err(err).Msg("agents ws write")
			return
		}
	}
}

type wsError string

func (e wsError) Error() string { return string(e) }

func (h *Handler) callAgent(ctx context.Context, action string, params json.RawMessage) (interface{}, error) {
	switch action {
	case "draw_image":
		var p drawImageRequest
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		if p.Description == "" {
			return nil, wsError("description is required")
		}
		return map[string]string{"url": h.imageAgent.DrawImage(ctx, p.Description)}, nil
	case "create_presentation":
		var p services.CreateRequest
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		if p.Title == "" {
			return nil, wsError("title is required")
		}
		return h.presentationAgent.CreatePresentation(ctx, p)
	case "list_templates":
		names, err := h.presentationAgent.ListTemplates(ctx)
		if err != nil {
			return nil, err
		}
		return map[string][]string{"templates": names}, nil
	case "":
		return nil, wsError("action required")
	default:
		return nil, wsError("unknown action: " + action)
	}
}

func unmarshalParams(params json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return wsError("invalid params: " + err.Error())
	}
	return nil
}

func writeWSJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	return conn.WriteJSON(v)
}
