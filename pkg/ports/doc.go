/*
Package ports defines the driven ports (interfaces) of the intake bot.

These interfaces decouple the conversation core from external systems, allowing the
dispatcher to work with various storage backends, SMS gateways and record sinks.

# Key Interfaces

  - SessionStore: Persists in-progress Sessions keyed by sender.
  - DistributedLocker: Serializes access to one sender's session across replicas.
  - SMSSender: Delivers a reply to the sender.
  - RecordSink: Appends completed Records to durable, append-only storage.
*/
package ports
