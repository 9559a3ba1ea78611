package localstore

import (
	"context"
	"encoding/json"
	"fmt"

	"task-dashboard/internal/model"
)

const (
	keyDemoData = "demo_data"
	keyDemoMode = "demo_mode"
	keyToken    = "session_token"
)

// Local is the per-client persisted state: the demo data blob, the demo-mode
// flag and the live session token, all under one namespace.
type Local struct {
	kv        KV
	namespace string
}

// NewLocal scopes kv to namespace. An empty namespace uses "taskdash".
func NewLocal(kv KV, namespace string) *Local {
	if namespace == "" {
		namespace = "taskdash"
	}
	return &Local{kv: kv, namespace: namespace}
}

func (l *Local) key(name string) string {
	return l.namespace + ":" + name
}

// Namespace returns the prefix shared by every key of l.
func (l *Local) Namespace() string {
	return l.namespace
}

// LoadDemo returns the persisted demo blob; ok is false if none exists yet.
func (l *Local) LoadDemo(ctx context.Context) (model.DemoData, bool, error) {
	raw, ok, err := l.kv.Get(ctx, l.key(keyDemoData))
	if err != nil || !ok {
		return model.DemoData{}, false, err
	}
	var data model.DemoData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return model.DemoData{}, false, fmt.Errorf("decode demo data: %w", err)
	}
	return data, true, nil
}

// SaveDemo rewrites the whole demo blob.
func (l *Local) SaveDemo(ctx context.Context, data model.DemoData) error {
	if data.Projects == nil {
		data.Projects = []model.Project{}
	}
	if data.Categories == nil {
		data.Categories = []model.Category{}
	}
	if data.Tasks == nil {
		data.Tasks = []model.Task{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode demo data: %w", err)
	}
	return l.kv.Set(ctx, l.key(keyDemoData), string(raw))
}

func (l *Local) SetDemoActive(ctx context.Context, active bool) error {
	if !active {
		return l.kv.Delete(ctx, l.key(keyDemoMode))
	}
	return l.kv.Set(ctx, l.key(keyDemoMode), "true")
}

func (l *Local) DemoActive(ctx context.Context) (bool, error) {
	value, ok, err := l.kv.Get(ctx, l.key(keyDemoMode))
	if err != nil {
		return false, err
	}
	return ok && value == "true", nil
}

func (l *Local) SaveToken(ctx context.Context, token string) error {
	if token == "" {
		return l.kv.Delete(ctx, l.key(keyToken))
	}
	return l.kv.Set(ctx, l.key(keyToken), token)
}

func (l *Local) Token(ctx context.Context) (string, error) {
	token, _, err := l.kv.Get(ctx, l.key(keyToken))
	return token, err
}
