// Package queue hands task payloads to an external Celery worker. Messages
// follow the Celery v2 protocol (json serializer) so the service stays a pure
// producer: retries, backoff and execution all belong to the worker.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const resultKeyPrefix = "celery-task-meta-"

type Queue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	backend *redis.Client
	name    string
	log     *zap.SugaredLogger
}

// Connect dials the broker and declares the task queue. The redis client is
// the Celery result backend used by TaskStatus.
func Connect(url string, backend *redis.Client, name string, log *zap.SugaredLogger) (*Queue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := channel.QueueDeclare(name, true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", name, err)
	}
	return &Queue{conn: conn, channel: channel, backend: backend, name: name, log: log}, nil
}

func (q *Queue) Close() {
	if q.channel != nil {
		_ = q.channel.Close()
	}
	if q.conn != nil {
		_ = q.conn.Close()
	}
}

// Enqueue publishes a task to the broker and returns the minted task id.
// Publishing is synchronous and fast; the caller never waits for execution.
func (q *Queue) Enqueue(ctx context.Context, task string, args ...any) (string, error) {
	id := uuid.NewString()
	msg, err := buildMessage(task, id, args)
	if err != nil {
		return "", err
	}
	if err := q.channel.PublishWithContext(ctx, "", q.name, false, false, msg); err != nil {
		return "", fmt.Errorf("failed to publish task %s: %w", task, err)
	}
	q.log.Infow("task enqueued", "task", task, "task_id", id, "queue", q.name)
	return id, nil
}

// buildMessage assembles a Celery v2 protocol message: the body is
// [args, kwargs, embed] and the task metadata travels in the headers.
func buildMessage(task, id string, args []any) (amqp.Publishing, error) {
	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal([3]any{
		args,
		map[string]any{},
		map[string]any{"callbacks": nil, "errbacks": nil, "chain": nil, "chord": nil},
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to serialize task args: %w", err)
	}
	argsrepr, _ := json.Marshal(args)
	hostname, _ := os.Hostname()

	return amqp.Publishing{
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		CorrelationId:   id,
		DeliveryMode:    amqp.Persistent,
		Timestamp:       time.Now(),
		Body:            body,
		Headers: amqp.Table{
			"lang":       "py",
			"task":       task,
			"id":         id,
			"root_id":    id,
			"parent_id":  nil,
			"group":      nil,
			"retries":    int32(0),
			"argsrepr":   string(argsrepr),
			"kwargsrepr": "{}",
			"origin":     hostname,
		},
	}, nil
}

// TaskStatus is the pass-through view of the result backend's state for one
// task: PENDING, STARTED, SUCCESS, FAILURE, RETRY or REVOKED.
type TaskStatus struct {
	TaskID string `json:"task_id"`
	State  string `json:"state"`
	Result any    `json:"result"`
}

// TaskStatus reads the Celery result backend entry for a task id. A missing
// entry means the worker has not reported yet, which Celery calls PENDING.
func (q *Queue) TaskStatus(ctx context.Context, taskID string) (TaskStatus, error) {
	data, err := q.backend.Get(ctx, resultKeyPrefix+taskID).Bytes()
	if err == redis.Nil {
		return TaskStatus{TaskID: taskID, State: "PENDING"}, nil
	}
	if err != nil {
		return TaskStatus{}, fmt.Errorf("failed to read task meta: %w", err)
	}
	return parseTaskMeta(taskID, data)
}

func parseTaskMeta(taskID string, data []byte) (TaskStatus, error) {
	var meta struct {
		Status string `json:"status"`
		Result any    `json:"result"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return TaskStatus{}, fmt.Errorf("malformed task meta for %s: %w", taskID, err)
	}
	return TaskStatus{TaskID: taskID, State: meta.Status, Result: meta.Result}, nil
}
