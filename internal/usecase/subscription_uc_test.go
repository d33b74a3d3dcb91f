//go:build !integration

package usecase

import (
	"context"
	"testing"
)

func TestSubscriptionGateDisabled(t *testing.T) {
	checker := &fakeChecker{member: false}
	uc := NewSubscriptionUseCase("@channel", false, checker, nil, nopLogger())

	ok, err := uc.IsSubscriber(context.Background(), 7)
	if err != nil || !ok {
		t.Errorf("disabled gate must pass everyone: ok=%v err=%v", ok, err)
	}
	if checker.calls != 0 {
		t.Errorf("disabled gate must not call the checker, got %d calls", checker.calls)
	}
}

func TestSubscriptionGateNonMember(t *testing.T) {
	checker := &fakeChecker{member: false}
	uc := NewSubscriptionUseCase("@channel", true, checker, nil, nopLogger())

	ok, err := uc.IsSubscriber(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("non-member must be rejected")
	}
}

func TestSubscriptionGateFailsOpen(t *testing.T) {
	checker := &fakeChecker{err: errBoom}
	uc := NewSubscriptionUseCase("@channel", true, checker, nil, nopLogger())

	ok, err := uc.IsSubscriber(context.Background(), 7)
	if err != nil {
		t.Fatalf("fail-open must swallow the error, got %v", err)
	}
	if !ok {
		t.Error("an API error must not lock users out")
	}
}
