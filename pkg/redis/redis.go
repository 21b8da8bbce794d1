package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"BioVision/internal/entity"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrMiss is returned when no boxes are mirrored for an image.
var ErrMiss = errors.New("no mirrored boxes")

type IRedis interface {
	SetBoxes(ctx context.Context, imageID string, boxes []entity.BoundingBox, expiration time.Duration) error
	GetBoxes(ctx context.Context, imageID string) ([]entity.BoundingBox, error)
	DeleteBoxes(ctx context.Context, imageID string) error
	SetActiveImage(ctx context.Context, imageID string) error
	Close() error
}

type redisClient struct {
	client *redis.Client
	prefix string
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return NewWithClient(client)
}

// NewWithClient wraps an existing go-redis client.
func NewWithClient(client *redis.Client) IRedis {
	return &redisClient{client: client, prefix: "biovision"}
}

func (r *redisClient) boxesKey(imageID string) string {
	return fmt.Sprintf("%s:boxes:%s", r.prefix, imageID)
}

func (r *redisClient) SetBoxes(ctx context.Context, imageID string, boxes []entity.BoundingBox, expiration time.Duration) error {
	payload, err := jsoniter.Marshal(boxes)
	if err != nil {
		return fmt.Errorf("encode boxes: %w", err)
	}

	key := r.boxesKey(imageID)
	if err := r.client.Set(ctx, key, payload, expiration).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error mirroring boxes for key %s: %v", key, err))
		return err
	}
	logrus.Debug(fmt.Sprintf("Mirrored %d boxes to %s", len(boxes), key))
	return nil
}

func (r *redisClient) GetBoxes(ctx context.Context, imageID string) ([]entity.BoundingBox, error) {
	key := r.boxesKey(imageID)
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading boxes for key %s: %v", key, err))
		return nil, err
	}

	var boxes []entity.BoundingBox
	if err := jsoniter.Unmarshal(val, &boxes); err != nil {
		return nil, fmt.Errorf("decode boxes: %w", err)
	}
	return boxes, nil
}

func (r *redisClient) DeleteBoxes(ctx context.Context, imageID string) error {
	key := r.boxesKey(imageID)
	result, err := r.client.Del(ctx, key).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error deleting boxes for key %s: %v", key, err))
		return err
	}
	if result == 0 {
		logrus.Debug(fmt.Sprintf("Key %s not found for deletion", key))
	}
	return nil
}

func (r *redisClient) SetActiveImage(ctx context.Context, imageID string) error {
	return r.client.Set(ctx, r.prefix+":active", imageID, 0).Err()
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
