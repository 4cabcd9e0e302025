package donationflow

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supportedLocales = []language.Tag{
	language.English,
	language.Indonesian,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// Catalog produces the user-facing alert texts for one locale. Amounts are
// always rendered with two decimals regardless of locale.
type Catalog struct {
	indonesian bool
	printer    *message.Printer
}

func NewCatalog(locale string) *Catalog {
	_, idx := language.MatchStrings(localeMatcher, locale)
	tag := supportedLocales[idx]
	return &Catalog{
		indonesian: tag == language.Indonesian,
		printer:    message.NewPrinter(tag),
	}
}

// FormatAmount renders minor units as a decimal amount with currency code.
// Plain fmt keeps the digits free of locale grouping separators.
func FormatAmount(amountMinor int64, currency string) string {
	sign := ""
	if amountMinor < 0 {
		sign = "-"
		amountMinor = -amountMinor
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amountMinor/100, amountMinor%100, strings.ToUpper(currency))
}

func (c *Catalog) Success(amountMinor int64, currency string) string {
	amount := FormatAmount(amountMinor, currency)
	if c.indonesian {
		return c.printer.Sprintf("Terima kasih! Donasi Anda sebesar %s telah diterima.", amount)
	}
	return c.printer.Sprintf("Thank you! Your donation of %s has been received.", amount)
}

func (c *Catalog) AlreadyRecorded(amountMinor int64, currency string) string {
	amount := FormatAmount(amountMinor, currency)
	if c.indonesian {
		return c.printer.Sprintf("Donasi Anda sebesar %s sudah tercatat sebelumnya. Terima kasih!", amount)
	}
	return c.printer.Sprintf("Your donation of %s was already recorded. Thank you!", amount)
}

func (c *Catalog) InvalidAmount() string {
	if c.indonesian {
		return "Jumlah tidak valid. Donasi minimal 1.00."
	}
	return "Invalid Amount. The minimum donation is 1.00."
}

func (c *Catalog) NotReady() string {
	if c.indonesian {
		return "Sistem pembayaran belum siap. Silakan coba lagi sebentar lagi."
	}
	return "The payment system is not ready yet. Please try again in a moment."
}

func (c *Catalog) SetupFailed() string {
	if c.indonesian {
		return "Tidak dapat menyiapkan pembayaran. Kartu Anda belum ditagih."
	}
	return "Could not set up the payment. Your card has not been charged."
}

func (c *Catalog) NotCompleted() string {
	if c.indonesian {
		return "Pembayaran tidak selesai. Silakan coba lagi."
	}
	return "The payment was not completed. Please try again."
}

func (c *Catalog) ChargedButUnrecorded() string {
	if c.indonesian {
		return "Pembayaran Anda berhasil tetapi belum tercatat. Tim kami akan mencocokkannya segera; Anda tidak akan ditagih dua kali."
	}
	return "Your payment went through but could not be recorded yet. Our team will reconcile it shortly; you will not be charged twice."
}

func (c *Catalog) Cancelled() string {
	if c.indonesian {
		return "Donasi dibatalkan."
	}
	return "Donation cancelled."
}

func (c *Catalog) InFlight() string {
	if c.indonesian {
		return "Donasi sedang diproses. Mohon tunggu."
	}
	return "A donation is already being processed. Please wait."
}
