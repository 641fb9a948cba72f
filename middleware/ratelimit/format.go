package ratelimit

// formatação dos headers X-RateLimit-*

import (
	"strconv"
	"time"
)

func formatInt(v int) string { return strconv.Itoa(v) }

// formatUnix formata como epoch em segundos (X-RateLimit-Reset).
func formatUnix(t time.Time) string { return strconv.FormatInt(t.Unix(), 10) }
