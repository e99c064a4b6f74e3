package common

import (
	"context"
	"testing"
)

func TestRequestContext_RoundTrip(t *testing.T) {
	ctx := context.Background()

	if rc := RequestContextFromContext(ctx); rc != nil {
		t.Error("Expected nil RequestContext from empty context")
	}
	if key, ok := ViewKey(ctx); ok {
		t.Errorf("ViewKey = %q without a view, want none", key)
	}
	if got := ResolveUserID(ctx); got != "default" {
		t.Errorf("ResolveUserID = %q, want default", got)
	}

	ctx = WithRequestContext(ctx, &RequestContext{UserID: "user-123", ViewID: "tab-7"})

	if key, ok := ViewKey(ctx); !ok || key != "user-123/tab-7" {
		t.Errorf("ViewKey = %q, %v, want user-123/tab-7", key, ok)
	}
	if got := ResolveUserID(ctx); got != "user-123" {
		t.Errorf("ResolveUserID = %q, want user-123", got)
	}
}

func TestViewKey_ScopedByUser(t *testing.T) {
	a, _ := ViewKey(WithRequestContext(context.Background(), &RequestContext{UserID: "alice", ViewID: "tab-1"}))
	b, _ := ViewKey(WithRequestContext(context.Background(), &RequestContext{UserID: "bob", ViewID: "tab-1"}))
	if a == b {
		t.Errorf("ViewKey collides across users: %q", a)
	}
	if _, ok := ViewKey(WithRequestContext(context.Background(), &RequestContext{UserID: "alice"})); ok {
		t.Error("Expected no view key for a request without a view id")
	}
}
