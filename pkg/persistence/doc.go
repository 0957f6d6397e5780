/*
Package persistence defines how sessions are serialized by durable stores.

Stores that write bytes (Redis, files) take a Codec. JSON is the plain encoding. An
encrypted codec wraps another codec with AES-256-GCM and supports key rotation through
fallback keys, so answers at rest are unreadable without the key.
*/
package persistence
