package controller

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bytebuddhi-be/internal/dto"
	"bytebuddhi-be/internal/pkg/serverutils"
	"bytebuddhi-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateConversation(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	SendChatStream(ctx *fiber.Ctx) error
	DeleteConversation(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/conversation", c.CreateConversation)
	h.Get("/conversation", c.GetAll)
	h.Get("/conversation/:id/history", c.GetHistory)
	h.Delete("/conversation/:id", c.DeleteConversation)
	h.Post("/send", serverutils.RateLimiter(30, time.Minute), c.SendChat)
	h.Post("/send/stream", serverutils.RateLimiter(30, time.Minute), c.SendChatStream)
}

func (c *chatController) CreateConversation(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	// Body is optional, a conversation may start without a project binding.
	var req struct {
		ProjectId *uuid.UUID `json:"project_id"`
	}
	_ = ctx.BodyParser(&req)

	res, err := c.chatService.CreateConversation(ctx.Context(), userId, req.ProjectId)
	if err != nil {
		return chatError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Conversation created", res))
}

func (c *chatController) GetAll(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.chatService.GetAll(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	res, err := c.chatService.GetHistory(ctx.Context(), userId, id)
	if err != nil {
		return chatError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.Context(), userId, &req)
	if err != nil {
		return chatError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

// SendChatStream answers over server-sent events: one "delta" event per
// response fragment, then a single "done" event with the persisted exchange.
func (c *chatController) SendChatStream(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	// The request context stays alive for the duration of the stream writer
	// and is cancelled when the client disconnects.
	reqCtx := ctx.Context()

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		onDelta := func(delta string) {
			writeSSE(w, dto.StreamEvent{Type: "delta", Delta: delta})
		}

		res, err := c.chatService.SendChatStream(reqCtx, userId, &req, onDelta)
		if err != nil {
			writeSSE(w, dto.StreamEvent{Type: "error", Error: err.Error()})
			return
		}

		writeSSE(w, dto.StreamEvent{Type: "done", Done: res})
	}))

	return nil
}

func (c *chatController) DeleteConversation(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	if err := c.chatService.DeleteConversation(ctx.Context(), userId, id); err != nil {
		return chatError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Conversation deleted", nil))
}

func writeSSE(w *bufio.Writer, event dto.StreamEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
	w.Flush()
}

func chatError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrConversationNotFound), errors.Is(err, service.ErrProjectNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	case errors.Is(err, service.ErrProjectNotReady):
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, err.Error()))
	default:
		return err
	}
}
