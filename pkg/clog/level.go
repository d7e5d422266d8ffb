package clog

import (
	"log/slog"
	"strings"

	"connectrpc.com/connect"
)

type Level int

const (
	LevelDebug Level = iota + 1
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// ParseLevel maps a config string (debug, info, warn, error) to a slog level.
// Unknown names fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func HTTPStatusToLevel(status int) Level {
	switch {
	case status == 499, status >= 100 && status < 400:
		return LevelInfo
	case status >= 400 && status < 500:
		return LevelWarn
	default:
		return LevelError
	}
}

// Client mistakes are info; anything the server must act on is error.
var connectCodeLevels = map[connect.Code]Level{
	connect.CodeCanceled:           LevelInfo,
	connect.CodeInvalidArgument:    LevelInfo,
	connect.CodeDeadlineExceeded:   LevelInfo,
	connect.CodeNotFound:           LevelInfo,
	connect.CodeAlreadyExists:      LevelInfo,
	connect.CodePermissionDenied:   LevelInfo,
	connect.CodeFailedPrecondition: LevelInfo,
	connect.CodeAborted:            LevelInfo,
	connect.CodeOutOfRange:         LevelInfo,
	connect.CodeUnauthenticated:    LevelInfo,
}

func ConnectCodeToLevel(code connect.Code) Level {
	if l, ok := connectCodeLevels[code]; ok {
		return l
	}
	return LevelError
}
