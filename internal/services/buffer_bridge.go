package services

import (
	"context"
	"encoding/json"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/internal/infrastructure/buffer"
	"github.com/tasklight/backend/usecase"
)

// BufferBridge adapts the buffer processor to the usecase OperationBuffer
// port so the stores stay unaware of the sync machinery.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if b.processor == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		Entity:    buffer.EntityTask,
		Operation: operation,
		TargetID:  task.ID,
		Data:      payload,
	})
}

func (b *BufferBridge) BufferTaskDelete(ctx context.Context, id string) error {
	if b.processor == nil || id == "" {
		return domain.ErrInvalidPayload
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		Entity:    buffer.EntityTask,
		Operation: buffer.OperationDelete,
		TargetID:  id,
	})
}

func (b *BufferBridge) BufferTag(ctx context.Context, operation string, tag *domain.Tag) error {
	if b.processor == nil || tag == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(tag)
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		Entity:    buffer.EntityTag,
		Operation: operation,
		TargetID:  tag.ID,
		Data:      payload,
	})
}

func (b *BufferBridge) BufferTagDelete(ctx context.Context, id string) error {
	if b.processor == nil || id == "" {
		return domain.ErrInvalidPayload
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		Entity:    buffer.EntityTag,
		Operation: buffer.OperationDelete,
		TargetID:  id,
	})
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
