package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/quillcms/quill"
	"github.com/quillcms/quill/internal/domain"
	"github.com/quillcms/quill/internal/present/rest/presenter"
	"github.com/quillcms/quill/internal/service"
	"github.com/quillcms/quill/internal/usecase"
)

const eventChannel = "quill:events"

type Handler struct {
	config    domain.Config
	registry  *service.CollectionRegistry
	duplicate *usecase.DuplicateUsecase
	document  *usecase.DocumentUsecase
	signal    *service.SignalService
}

func NewHandler(
	config domain.Config,
	registry *service.CollectionRegistry,
	duplicate *usecase.DuplicateUsecase,
	document *usecase.DocumentUsecase,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		config:    config,
		registry:  registry,
		duplicate: duplicate,
		document:  document,
		signal:    signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/collections/:collection/:id", h.handleGet)
	e.POST("/collections/:collection/:id/duplicate", h.handleDuplicate)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleDuplicate(c echo.Context) error {
	ctx := c.Request().Context()

	col, ok := h.registry.Get(c.Param("collection"))
	if !ok {
		return presenter.NotFound(c, "unknown collection")
	}

	var draft *bool
	if raw := c.QueryParam("draft"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid draft parameter")
		}
		draft = &parsed
	}

	depth := 0
	if raw := c.QueryParam("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid depth parameter")
		}
		depth = parsed
	}

	showHidden := false
	if raw := c.QueryParam("showHiddenFields"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid showHiddenFields parameter")
		}
		showHidden = parsed
	}

	result, err := h.duplicate.Duplicate(ctx, usecase.DuplicateInput{
		ID:               c.Param("id"),
		Collection:       col,
		Principal:        principalFrom(c),
		Locale:           c.QueryParam("locale"),
		Depth:            depth,
		Draft:            draft,
		ShowHiddenFields: showHidden,
	})
	if err != nil {
		return h.renderError(c, err)
	}

	if h.signal != nil {
		newID, _ := result["id"].(string)
		event := quill.Event{
			Type:       quill.EventDocumentDuplicated,
			Collection: col.Slug,
			DocumentID: newID,
			Timestamp:  time.Now(),
		}
		if err := h.signal.Publish(ctx, eventChannel, event); err != nil {
			slog.WarnContext(
				ctx, "Failed to publish duplicate event",
				slog.String("error", err.Error()),
				slog.String("module", "rest"),
			)
		}
	}

	return presenter.OK(c, result)
}

func (h *Handler) handleGet(c echo.Context) error {
	ctx := c.Request().Context()

	col, ok := h.registry.Get(c.Param("collection"))
	if !ok {
		return presenter.NotFound(c, "unknown collection")
	}

	depth := 0
	if raw := c.QueryParam("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid depth parameter")
		}
		depth = parsed
	}

	result, err := h.document.Get(ctx, usecase.GetInput{
		ID:         c.Param("id"),
		Collection: col,
		Principal:  principalFrom(c),
		Locale:     c.QueryParam("locale"),
		Depth:      depth,
	})
	if err != nil {
		return h.renderError(c, err)
	}

	return presenter.OK(c, result)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return presenter.NotFound(c, "realtime not available")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	pubsub := h.signal.Subscribe(ctx, eventChannel)
	defer pubsub.Close()

	quit := make(chan struct{})

	go func() {
		for {
			_, _, err := ws.ReadMessage()
			if err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				close(quit)
				break
			}
		}
	}()

	channel := pubsub.Channel()
	for {
		select {
		case <-quit:
			return nil
		case msg, ok := <-channel:
			if !ok {
				return nil
			}

			var event quill.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(
					ctx, "Error decoding event",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				continue
			}

			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}

func (h *Handler) renderError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return presenter.BadRequest(c, err)
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return presenter.Forbidden(c, err.Error())
	default:
		return presenter.InternalError(c, err)
	}
}

func principalFrom(c echo.Context) domain.Principal {
	principal, _ := c.Request().Context().Value(domain.PrincipalCtxKey).(domain.Principal)
	return principal
}
