package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RecipientResolver maps a team abbreviation to the identities that follow it.
type RecipientResolver interface {
	Recipients(ctx context.Context, team string) ([]string, error)
}

// StaticResolver serves a fixed, config-provided map. Keys are matched upper-case.
type StaticResolver struct {
	byTeam map[string][]string
}

func NewStaticResolver(byTeam map[string][]string) *StaticResolver {
	normalized := make(map[string][]string, len(byTeam))
	for team, ids := range byTeam {
		key := strings.ToUpper(strings.TrimSpace(team))
		normalized[key] = append(normalized[key], ids...)
	}
	return &StaticResolver{byTeam: normalized}
}

func (r *StaticResolver) Recipients(ctx context.Context, team string) ([]string, error) {
	_ = ctx
	ids := r.byTeam[strings.ToUpper(team)]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

// RedisResolver reads subscribers from the set team:{abbr}:subscribers.
type RedisResolver struct {
	client *redis.Client
}

func NewRedisResolver(client *redis.Client) *RedisResolver {
	return &RedisResolver{client: client}
}

func SubscribersKey(team string) string {
	return "team:" + strings.ToUpper(team) + ":subscribers"
}

func (r *RedisResolver) Recipients(ctx context.Context, team string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, SubscribersKey(team)).Result()
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", team, err)
	}
	return ids, nil
}

// Subscribe adds recipient to team's set.
func (r *RedisResolver) Subscribe(ctx context.Context, team, recipient string) error {
	return r.client.SAdd(ctx, SubscribersKey(team), recipient).Err()
}
