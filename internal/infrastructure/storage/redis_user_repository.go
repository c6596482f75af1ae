package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"face-shape-bot/internal/domain/entity"
	"face-shape-bot/internal/domain/port"
)

const userKeyPrefix = "faceshape:user:"

// DefaultUserTTL сколько хранится состояние неактивного пользователя
const DefaultUserTTL = 30 * 24 * time.Hour

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RedisConfig параметры подключения к Redis
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// RedisUserRepository хранит пользователей в Redis, переживает перезапуск бота
type RedisUserRepository struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Entry
}

// NewRedisClient создаёт клиента и проверяет соединение
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Address, err)
	}
	return client, nil
}

// NewRedisUserRepository создаёт хранилище поверх готового клиента
func NewRedisUserRepository(client *redis.Client, ttl time.Duration, log *logrus.Entry) *RedisUserRepository {
	if ttl <= 0 {
		ttl = DefaultUserTTL
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RedisUserRepository{
		client: client,
		ttl:    ttl,
		log:    log.WithField("component", "redis-users"),
	}
}

// Get возвращает пользователя по ID, создаёт нового если не найден
func (r *RedisUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	user, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = entity.NewUser(userID, chatID)
	if err := r.Save(ctx, user); err != nil {
		return nil, err
	}
	r.log.WithField("user_id", userID).Debug("user created")
	return user, nil
}

// Save сохраняет состояние пользователя и продлевает TTL
func (r *RedisUserRepository) Save(ctx context.Context, user *entity.User) error {
	data, err := encodeUser(user)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, userKey(user.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save user %d: %w", user.ID, err)
	}
	return nil
}

// UpdateState обновляет состояние пользователя, если он уже есть
func (r *RedisUserRepository) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	user, err := r.load(ctx, userID)
	if err != nil || user == nil {
		return err
	}
	user.SetState(state)
	return r.Save(ctx, user)
}

func (r *RedisUserRepository) load(ctx context.Context, userID int64) (*entity.User, error) {
	data, err := r.client.Get(ctx, userKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return decodeUser(data)
}

func userKey(userID int64) string {
	return userKeyPrefix + strconv.FormatInt(userID, 10)
}

func encodeUser(user *entity.User) ([]byte, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user %d: %w", user.ID, err)
	}
	return data, nil
}

func decodeUser(data []byte) (*entity.User, error) {
	var user entity.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if user.Mode == "" {
		user.Mode = entity.ModeAuto
	}
	return &user, nil
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*RedisUserRepository)(nil)
