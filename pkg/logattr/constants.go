package logattr

import "log/slog"

func ServiceName(serviceName string) slog.Attr {
	return slog.String("service_name", serviceName)
}

func Component(component string) slog.Attr {
	return slog.String("component", component)
}

func Topic(topic string) slog.Attr {
	return slog.String("topic", topic)
}

func EventType(eventType string) slog.Attr {
	return slog.String("event_type", eventType)
}

func EventId(eventId string) slog.Attr {
	return slog.String("event_id", eventId)
}

func ProductId(productId string) slog.Attr {
	return slog.String("product_id", productId)
}

func OrderId(orderId string) slog.Attr {
	return slog.String("order_id", orderId)
}

func UserId(userId string) slog.Attr {
	return slog.String("user_id", userId)
}

func Points(points int64) slog.Attr {
	return slog.Int64("points", points)
}

func Stock(stock int64) slog.Attr {
	return slog.Int64("stock", stock)
}

func StateKey(key string) slog.Attr {
	return slog.String("state_key", key)
}

func Error(err string) slog.Attr {
	return slog.String("error", err)
}
