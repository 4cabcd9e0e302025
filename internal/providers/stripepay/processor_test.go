package stripepay

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"bloodlink/internal/domain"
)

func TestIntentIDFromClientSecret(t *testing.T) {
	id, err := IntentIDFromClientSecret("pi_3NxyzABC_secret_f00")
	if err != nil {
		t.Fatalf("IntentIDFromClientSecret() error: %v", err)
	}
	if id != "pi_3NxyzABC" {
		t.Fatalf("intent id mismatch: got %q", id)
	}
}

func TestIntentIDFromClientSecretMalformed(t *testing.T) {
	for _, secret := range []string{"", "pi_no_marker", "_secret_only"} {
		if _, err := IntentIDFromClientSecret(secret); !errors.Is(err, domain.ErrPaymentSetup) {
			t.Fatalf("secret %q: got err %v, want ErrPaymentSetup", secret, err)
		}
	}
}

func TestClientNotReadyWithoutKey(t *testing.T) {
	c := New("", "", zerolog.Nop())
	if c.Ready() {
		t.Fatalf("Ready() = true for client without secret key")
	}
	if _, err := c.CreateIntent(context.Background(), 2500, "usd", nil); !errors.Is(err, domain.ErrPaymentSystemNotReady) {
		t.Fatalf("CreateIntent() err = %v, want ErrPaymentSystemNotReady", err)
	}
	if _, err := c.ConfirmPayment(context.Background(), "pi_1_secret_x", "pm_card", domain.BillingDetails{}); !errors.Is(err, domain.ErrPaymentSystemNotReady) {
		t.Fatalf("ConfirmPayment() err = %v, want ErrPaymentSystemNotReady", err)
	}
}

func TestVerifyWebhookRequiresSecret(t *testing.T) {
	c := New("sk_test_x", "", zerolog.Nop())
	if _, err := c.VerifyWebhook([]byte(`{}`), "sig"); err == nil {
		t.Fatalf("VerifyWebhook() expected error without webhook secret")
	}
}
