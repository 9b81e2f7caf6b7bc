package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"bytebuddhi-be/internal/dto"
	"bytebuddhi-be/internal/entity"
	"bytebuddhi-be/internal/repository/memory"
	"bytebuddhi-be/internal/repository/specification"
	"bytebuddhi-be/internal/repository/unitofwork"
	"bytebuddhi-be/pkg/agent"
	"bytebuddhi-be/pkg/llm"

	"github.com/google/uuid"
)

var (
	ErrConversationNotFound = errors.New("conversation not found or access denied")
	ErrProjectNotReady      = errors.New("project is not indexed yet")
)

// historyWindow caps how many prior messages are replayed to the model.
const historyWindow = 20

type IChatService interface {
	CreateConversation(ctx context.Context, userId uuid.UUID, projectId *uuid.UUID) (*dto.CreateConversationResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllConversationsResponse, error)
	GetHistory(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	SendChatStream(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest, onDelta func(delta string)) (*dto.SendChatResponse, error)
	DeleteConversation(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	queryAgent   *agent.Agent
	historyCache *memory.HistoryCache
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	queryAgent *agent.Agent,
	historyCache *memory.HistoryCache,
) IChatService {
	return &chatService{
		uowFactory:   uowFactory,
		queryAgent:   queryAgent,
		historyCache: historyCache,
	}
}

func (cs *chatService) CreateConversation(ctx context.Context, userId uuid.UUID, projectId *uuid.UUID) (*dto.CreateConversationResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if projectId != nil {
		if _, err := cs.verifyProject(ctx, uow, userId, *projectId); err != nil {
			return nil, err
		}
	}

	conversation := entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		ProjectId: projectId,
		Title:     "New conversation",
		CreatedAt: time.Now(),
	}

	if err := uow.ConversationRepository().Create(ctx, &conversation); err != nil {
		return nil, err
	}

	return &dto.CreateConversationResponse{Id: conversation.Id}, nil
}

func (cs *chatService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllConversationsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.ByUserId{UserId: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllConversationsResponse, 0, len(conversations))
	for _, c := range conversations {
		response = append(response, &dto.GetAllConversationsResponse{
			Id:        c.Id,
			Title:     c.Title,
			ProjectId: c.ProjectId,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}

	return response, nil
}

func (cs *chatService) GetHistory(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := cs.verifyConversation(ctx, uow, userId, conversationId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationId{ConversationId: conversation.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      string(msg.Role),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
			Metadata:  metadataToDTO(msg.Metadata),
		})
	}

	return response, nil
}

// SendChat runs the query through the workflow and persists both sides of the
// exchange once the full answer is known.
func (cs *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	turn, err := cs.prepareTurn(ctx, userId, req)
	if err != nil {
		return nil, err
	}

	result, err := cs.queryAgent.RunQuery(ctx, agent.QueryRequest{
		Query:     req.Query,
		ProjectId: turn.projectId,
		History:   turn.history,
	})
	if err != nil {
		return nil, err
	}

	return cs.persistTurn(ctx, userId, turn, result)
}

// SendChatStream behaves like SendChat but forwards response deltas to
// onDelta as they arrive. Persistence happens after the stream completes.
func (cs *chatService) SendChatStream(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest, onDelta func(delta string)) (*dto.SendChatResponse, error) {
	turn, err := cs.prepareTurn(ctx, userId, req)
	if err != nil {
		return nil, err
	}

	stream, err := cs.queryAgent.RunQueryStream(ctx, agent.QueryRequest{
		Query:     req.Query,
		ProjectId: turn.projectId,
		History:   turn.history,
	})
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	for {
		delta, err := stream.Recv(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if onDelta != nil {
			onDelta(delta)
		}
	}

	result, err := stream.Final(ctx)
	if err != nil {
		return nil, err
	}

	return cs.persistTurn(ctx, userId, turn, result)
}

func (cs *chatService) DeleteConversation(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := cs.verifyConversation(ctx, uow, userId, id)
	if err != nil {
		return err
	}

	if err := uow.ConversationRepository().Delete(ctx, conversation.Id); err != nil {
		return err
	}

	cs.historyCache.Invalidate(ctx, conversation.Id)
	return nil
}

// chatTurn carries the resolved context of one SendChat call between the
// prepare and persist halves.
type chatTurn struct {
	conversation *entity.Conversation
	projectId    *uuid.UUID
	history      []llm.Message
	query        string
	firstTurn    bool
}

func (cs *chatService) prepareTurn(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*chatTurn, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	var conversation *entity.Conversation
	if req.ConversationId == nil {
		created, err := cs.CreateConversation(ctx, userId, req.ProjectId)
		if err != nil {
			return nil, err
		}
		conversation = &entity.Conversation{
			Id:        created.Id,
			UserId:    userId,
			ProjectId: req.ProjectId,
			Title:     "New conversation",
			CreatedAt: time.Now(),
		}
	} else {
		found, err := cs.verifyConversation(ctx, uow, userId, *req.ConversationId)
		if err != nil {
			return nil, err
		}
		conversation = found
	}

	// The conversation's project binding wins over the request.
	projectId := conversation.ProjectId
	if projectId == nil {
		projectId = req.ProjectId
	}
	if projectId != nil {
		if _, err := cs.verifyProject(ctx, uow, userId, *projectId); err != nil {
			return nil, err
		}
	}

	history, err := cs.loadHistory(ctx, uow, conversation.Id)
	if err != nil {
		return nil, err
	}

	return &chatTurn{
		conversation: conversation,
		projectId:    projectId,
		history:      history,
		query:        req.Query,
		firstTurn:    len(history) == 0,
	}, nil
}

func (cs *chatService) persistTurn(ctx context.Context, userId uuid.UUID, turn *chatTurn, result *agent.QueryResult) (*dto.SendChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	userMessage := &entity.Message{
		Id:             uuid.New(),
		ConversationId: turn.conversation.Id,
		Role:           entity.MessageRoleUser,
		Content:        turn.query,
		CreatedAt:      now,
	}

	assistantMessage := &entity.Message{
		Id:             uuid.New(),
		ConversationId: turn.conversation.Id,
		Role:           entity.MessageRoleAssistant,
		Content:        result.ResponseText,
		Metadata:       metadataFromResult(result),
		CreatedAt:      now.Add(1 * time.Millisecond),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().Create(ctx, userMessage); err != nil {
		return nil, err
	}
	if err := uow.MessageRepository().Create(ctx, assistantMessage); err != nil {
		return nil, err
	}

	if turn.firstTurn {
		turn.conversation.Title = deriveTitle(turn.query)
	}
	turn.conversation.UpdatedAt = &now
	if err := uow.ConversationRepository().Update(ctx, turn.conversation); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	updatedHistory := append(turn.history,
		llm.Message{Role: "user", Content: turn.query},
		llm.Message{Role: "assistant", Content: result.ResponseText},
	)
	if len(updatedHistory) > historyWindow {
		updatedHistory = updatedHistory[len(updatedHistory)-historyWindow:]
	}
	cs.historyCache.Set(ctx, turn.conversation.Id, updatedHistory)

	return &dto.SendChatResponse{
		ConversationId:    turn.conversation.Id,
		ConversationTitle: turn.conversation.Title,
		Sent: &dto.SendChatResponseMessage{
			Id:        userMessage.Id,
			Role:      string(userMessage.Role),
			Content:   userMessage.Content,
			CreatedAt: userMessage.CreatedAt,
		},
		Reply: &dto.SendChatResponseMessage{
			Id:        assistantMessage.Id,
			Role:      string(assistantMessage.Role),
			Content:   assistantMessage.Content,
			CreatedAt: assistantMessage.CreatedAt,
			Metadata:  metadataToDTO(assistantMessage.Metadata),
		},
	}, nil
}

func (cs *chatService) verifyConversation(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Conversation, error) {
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByUserId{UserId: userId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}

func (cs *chatService) verifyProject(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Project, error) {
	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByUserId{UserId: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.Status != entity.ProjectStatusReady {
		return nil, ErrProjectNotReady
	}
	return project, nil
}

func (cs *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID) ([]llm.Message, error) {
	if cached, found := cs.historyCache.Get(ctx, conversationId); found {
		return cached, nil
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationId{ConversationId: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(messages))
	for _, msg := range messages {
		history = append(history, llm.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	if len(history) > 0 {
		cs.historyCache.Set(ctx, conversationId, history)
	}

	return history, nil
}

func metadataFromResult(result *agent.QueryResult) *entity.MessageMetadata {
	metadata := &entity.MessageMetadata{
		Intent:        string(result.Intent),
		Trace:         result.Trace,
		GeneratedCode: result.GeneratedCode,
	}

	if result.Evidence != nil {
		for _, src := range result.Evidence.Sources {
			metadata.Sources = append(metadata.Sources, entity.MessageSource{
				Title: src.Title,
				URL:   src.URL,
			})
		}
	}

	if result.Failure != nil {
		metadata.Degraded = true
		metadata.FailedStage = result.Failure.Stage
	}

	return metadata
}

func metadataToDTO(metadata *entity.MessageMetadata) *dto.MessageMetadataDTO {
	if metadata == nil {
		return nil
	}

	out := &dto.MessageMetadataDTO{
		Intent:        metadata.Intent,
		Trace:         metadata.Trace,
		GeneratedCode: metadata.GeneratedCode,
		Degraded:      metadata.Degraded,
		FailedStage:   metadata.FailedStage,
	}
	for _, src := range metadata.Sources {
		out.Sources = append(out.Sources, dto.SourceDTO{Title: src.Title, URL: src.URL})
	}
	return out
}

func deriveTitle(query string) string {
	title := strings.TrimSpace(strings.ReplaceAll(query, "\n", " "))
	runes := []rune(title)
	if len(runes) > 80 {
		title = string(runes[:77]) + "..."
	}
	if title == "" {
		title = "New conversation"
	}
	return title
}
