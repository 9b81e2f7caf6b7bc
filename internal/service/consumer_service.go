package service

import (
	"context"
	"encoding/json"
	"log"
	"path/filepath"
	"strings"
	"time"

	"bytebuddhi-be/internal/dto"
	"bytebuddhi-be/internal/entity"
	"bytebuddhi-be/internal/repository/specification"
	"bytebuddhi-be/internal/repository/unitofwork"
	"bytebuddhi-be/pkg/events"
	"bytebuddhi-be/pkg/llm"
	pktNats "bytebuddhi-be/pkg/nats"
	"bytebuddhi-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const (
	// ChunkSize: 1500 chars (approx 375 tokens), safe for embedding context limits.
	indexChunkSize    = 1500
	indexChunkOverlap = 200
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	llmProvider    llm.LLMProvider
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIndexProjectMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal index message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Indexing project %s (%d files)", payload.ProjectId, len(payload.Files))

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx, specification.ByID{ID: payload.ProjectId})
	if err != nil {
		log.Printf("[ERROR] Failed to get project %s: %v", payload.ProjectId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if project == nil {
		log.Printf("[ERROR] Project not found: %s", payload.ProjectId)
		msg.Ack() // Project deleted? Ack.
		return
	}

	if err := uow.ProjectRepository().UpdateStatus(ctx, project.Id, entity.ProjectStatusIndexing, project.ChunkCount); err != nil {
		log.Printf("[ERROR] Failed to mark project %s as indexing: %v", project.Id, err)
		msg.Nack()
		return
	}

	var newChunks []*entity.CodeChunk
	for _, file := range payload.Files {
		chunks := utils.SplitCode(file.Content, indexChunkSize, indexChunkOverlap)
		for i, chunk := range chunks {
			vector, err := cs.llmProvider.Embed(ctx, chunk)
			if err != nil {
				log.Printf("[ERROR] Failed to embed chunk %d of %s: %v", i, file.Path, err)
				cs.markFailed(ctx, uow, project)
				msg.Nack()
				return
			}

			newChunks = append(newChunks, &entity.CodeChunk{
				Id:         uuid.New(),
				ProjectId:  project.Id,
				Source:     file.Path,
				Language:   languageForPath(file.Path),
				Content:    chunk,
				ChunkIndex: i,
				Embedding:  vector,
				CreatedAt:  time.Now(),
			})
		}
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	log.Printf("[INFO] Replacing chunks for project %s", project.Id)
	if err := uow.CodeChunkRepository().DeleteByProjectId(ctx, project.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old chunks: %v", err)
		msg.Nack()
		return
	}

	if len(newChunks) > 0 {
		if err := uow.CodeChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			log.Printf("[ERROR] Failed to create bulk chunks: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	if err := uow.ProjectRepository().UpdateStatus(ctx, project.Id, entity.ProjectStatusReady, len(newChunks)); err != nil {
		log.Printf("[ERROR] Failed to mark project %s as ready: %v", project.Id, err)
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.ProjectIndexedEvent{
			ProjectId:  project.Id,
			UserId:     project.UserId,
			Status:     string(entity.ProjectStatusReady),
			ChunkCount: len(newChunks),
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish PROJECT_INDEXED event: %v", err)
		}
	}

	log.Printf("[SUCCESS] Project indexed: %d chunks for ProjectId: %s", len(newChunks), project.Id)
	msg.Ack()
}

func languageForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js", ".jsx":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".java":
		return "java"
	case ".rs":
		return "rust"
	case ".rb":
		return "ruby"
	case ".c", ".h":
		return "c"
	case ".cpp", ".cc", ".hpp":
		return "cpp"
	case ".cs":
		return "csharp"
	case ".sql":
		return "sql"
	case ".sh":
		return "shell"
	case ".md":
		return "markdown"
	default:
		return strings.TrimPrefix(ext, ".")
	}
}

func (cs *consumerService) markFailed(ctx context.Context, uow unitofwork.UnitOfWork, project *entity.Project) {
	if err := uow.ProjectRepository().UpdateStatus(ctx, project.Id, entity.ProjectStatusFailed, project.ChunkCount); err != nil {
		log.Printf("[ERROR] Failed to mark project %s as failed: %v", project.Id, err)
	}
}
