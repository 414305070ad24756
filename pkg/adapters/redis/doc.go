/*
Package redis provides the durable-stream edges, backed by Redis Streams.

Every stream id maps to one Redis stream. Payloads are msgpack encoded and
stored as a single field whose name is the framing key. Consumers read with
XREAD from 0-0, so a consumer started late still sees everything produced in
the current submission; graphs purge their streams before each submission.

Clients are pooled per endpoint by a Manager:

	m := redis.NewManager()
	client, err := m.Client(ctx, "localhost:6379/0")
	f := redis.NewFactory(redis.NewStreams(client), redis.WithURL("localhost:6379/0"))
*/
package redis
