package tui

import (
	"fmt"
	"time"
)

// FormatViews renders a view counter compactly: 1.2M, 86.4K, 940
func FormatViews(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FormatTimeAgo renders the time elapsed since t in Portuguese
func FormatTimeAgo(t, now time.Time) string {
	secs := int64(now.Sub(t) / time.Second)
	switch {
	case secs < 60:
		return "agora"
	case secs < 3600:
		return fmt.Sprintf("%d min atrás", secs/60)
	case secs < 86400:
		return fmt.Sprintf("%dh atrás", secs/3600)
	case secs < 2592000:
		return fmt.Sprintf("%d dias atrás", secs/86400)
	case secs < 31536000:
		return fmt.Sprintf("%d meses atrás", secs/2592000)
	default:
		return fmt.Sprintf("%d anos atrás", secs/31536000)
	}
}
