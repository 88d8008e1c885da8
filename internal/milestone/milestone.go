// Package milestone decides when goal progress has crossed a new 5% band
// and builds the notification for it.
package milestone

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/theirongolddev/fitrack/internal/finance"
	"github.com/theirongolddev/fitrack/internal/notify"
)

// Title is used for every progress notification.
const Title = "My Financial Independence"

// Result is the outcome of one detection.
type Result struct {
	Fired     bool
	Watermark float64
}

// Band returns the highest 5% boundary at or below pct.
func Band(pct float64) float64 {
	if math.IsNaN(pct) || pct <= 0 {
		return 0
	}
	return math.Floor(pct/finance.MilestoneStep) * finance.MilestoneStep
}

// Detect fires when pct sits in a band above the watermark. The watermark
// only ever moves up.
func Detect(pct, watermark float64) Result {
	band := Band(pct)
	if band > watermark && band > 0 {
		return Result{Fired: true, Watermark: band}
	}
	return Result{Watermark: watermark}
}

// Message builds the notification text for a band.
func Message(band float64) (title, body string) {
	if band >= 100 {
		return Title, "Congratulations! You reached 100% of your financial independence goal!"
	}
	return Title, fmt.Sprintf("Congratulations! You reached %.0f%% of your financial independence goal!", band)
}

// Dispatch notifies about band through sink. Failures are logged by
// notify.Send and not retried.
func Dispatch(sink notify.Sink, band float64) notify.Result {
	title, body := Message(band)
	res := notify.Send(sink, title, body)
	if res.Delivered {
		log.WithFields(log.Fields{"component": "milestone", "band": band}).Debug("milestone notification sent")
	}
	return res
}
