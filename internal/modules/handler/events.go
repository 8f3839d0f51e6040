package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/signoffhq/signoff/internal/config"
	"github.com/signoffhq/signoff/internal/modules/service"
	"github.com/signoffhq/signoff/internal/realtime"
	"go.uber.org/zap"
)

const (
	// WriteTimeout bounds a single frame write.
	WriteTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// EventsHandler relays project change events over a websocket. Clients
// reload through the regular read endpoints when a frame arrives.
type EventsHandler struct {
	sub          realtime.Subscriber
	stakeholders service.StakeholderService
	projects     service.ProjectService
	upgrader     websocket.Upgrader
	log          *zap.Logger
}

func NewEventsHandler(sub realtime.Subscriber, stakeholders service.StakeholderService, projects service.ProjectService, cfg *config.Config, log *zap.Logger) *EventsHandler {
	return &EventsHandler{
		sub:          sub,
		stakeholders: stakeholders,
		projects:     projects,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg),
		},
		log: log,
	}
}

// checkOrigin accepts the review front end's origin. Every origin is allowed in debug mode.
func checkOrigin(cfg *config.Config) func(r *http.Request) bool {
	allowed := ""
	if u, err := url.Parse(cfg.Review.BaseURL); err == nil {
		allowed = u.Scheme + "://" + u.Host
	}
	return func(r *http.Request) bool {
		if gin.Mode() == gin.DebugMode {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if origin == allowed {
			return true
		}
		o, err := url.Parse(origin)
		return err == nil && o.Host == r.Host
	}
}

type eventFrame struct {
	Kind      realtime.ChangeKind `json:"kind"`
	ProjectID uuid.UUID           `json:"project_id"`
	EntityID  uuid.UUID           `json:"entity_id"`
}

// ReviewEvents godoc
//
//	@Summary		Review change feed
//	@Description	Websocket stream of change notifications for the reviewed project
//	@Tags			review
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Param			token		path	string	true	"Review token"
//	@Success		101
//	@Failure		403	{object}	serializer.Response
//	@Router			/review/{project_id}/{token}/events [get]
func (h *EventsHandler) ReviewEvents(c *gin.Context) {
	projectID, ok := reviewProjectID(c)
	if !ok {
		return
	}
	if _, err := h.stakeholders.Resolve(c.Request.Context(), projectID, c.Param("token")); err != nil {
		writeErr(c, err)
		return
	}
	h.stream(c, projectID)
}

// ProjectEvents godoc
//
//	@Summary		Project change feed
//	@Description	Websocket stream of change notifications for an agency project
//	@Tags			project
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		101
//	@Router			/projects/{project_id}/events [get]
func (h *EventsHandler) ProjectEvents(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	agency, ok := agencyFrom(c)
	if !ok {
		return
	}
	if err := h.projects.CheckOwned(c.Request.Context(), agency.ID, projectID); err != nil {
		writeErr(c, err)
		return
	}
	h.stream(c, projectID)
}

func (h *EventsHandler) stream(c *gin.Context, projectID uuid.UUID) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events, stop, err := h.sub.Subscribe(ctx, projectID)
	if err != nil {
		writeErr(c, &service.TransportError{Op: "subscribe", Err: err})
		return
	}
	defer stop()

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the request
		return
	}
	defer ws.Close()

	// Client frames are ignored; a read error means the peer went away
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(WriteTimeout)); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			raw, err := sonic.Marshal(eventFrame{Kind: ev.Kind, ProjectID: ev.ProjectID, EntityID: ev.EntityID})
			if err != nil {
				h.log.Sugar().Warnw("encode change frame", "err", err)
				continue
			}
			if err := ws.SetWriteDeadline(time.Now().Add(WriteTimeout)); err != nil {
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		}
	}
}
