package logger

import (
	"log/slog"
	"strconv"
)

func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func TenantID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("tenant_id", id)
}

func Schema(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("schema", name)
}

func Aggregate(kind, id string) slog.Attr {
	return Group("aggregate", slog.String("type", kind), slog.String("id", id))
}

func CacheKey(key string) slog.Attr {
	return slog.String("cache_key", key)
}

func EventType(eventType string) slog.Attr {
	return slog.String("event_type", eventType)
}

func EventCount(n int) slog.Attr {
	return slog.Int("event_count", n)
}

func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}
