package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"bloodlink/internal/donationflow"
	"bloodlink/internal/infra"
	"bloodlink/internal/providers/stripepay"
)

func main() {
	_ = godotenv.Load()

	var (
		amount        = flag.Float64("amount", 0, "donation amount in major units, e.g. 25.00")
		currency      = flag.String("currency", "usd", "ISO currency code")
		name          = flag.String("name", "", "donor name shown on the ledger")
		email         = flag.String("email", "", "donor email for the payment receipt")
		anonymous     = flag.Bool("anonymous", false, "record the donation anonymously")
		paymentMethod = flag.String("payment-method", "", "payment method id, e.g. pm_card_visa")
		campaign      = flag.String("campaign", "", "optional campaign tag")
		apiBase       = flag.String("api", "http://localhost:8080", "funds backend base URL")
		token         = flag.String("token", "", "session token for the funds backend")
		locale        = flag.String("locale", "en", "message locale (en, id)")
		yes           = flag.Bool("yes", false, "skip the confirmation prompt")
	)
	flag.Parse()

	logger := infra.NewLogger(os.Getenv("APP_ENV"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	confirmer := stripepay.New(os.Getenv("STRIPE_SECRET_KEY"), "", logger)

	backend := donationflow.NewClient(*apiBase,
		donationflow.WithSessionToken(*token),
		donationflow.WithClientLocale(*locale),
		donationflow.WithClientLogger(logger),
	)

	opts := []donationflow.Option{
		donationflow.WithLocale(*locale),
		donationflow.WithLogger(logger),
	}
	if !*yes {
		opts = append(opts, donationflow.WithConfirmPrompt(promptStdin))
	}

	flow := donationflow.New(backend, confirmer, opts...)

	result := flow.Submit(ctx, donationflow.Submission{
		Amount:          *amount,
		Currency:        *currency,
		PaymentMethodID: *paymentMethod,
		Campaign:        *campaign,
		Session: donationflow.Session{
			Name:      *name,
			Email:     *email,
			Anonymous: *anonymous,
		},
	})

	fmt.Println(result.Message)
	if !result.Succeeded {
		os.Exit(1)
	}
}

func promptStdin(amountMinor int64, currency string) bool {
	fmt.Printf("Donate %s? [y/N] ", donationflow.FormatAmount(amountMinor, currency))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
