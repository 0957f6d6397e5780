/*
Package intake is an SMS conversational intake bot.

A sender texts a dedicated number and is walked through a fixed sequence of prompts
(name, honoree, relationship, shirt size). Answers are validated, every step is
acknowledged by SMS, and a completed conversation becomes one durable record.

# Architecture

The core is a pure state machine (pkg/machine) keyed by the sender's session state.
Around it:

  - pkg/conversation applies inbound messages under a per-sender lock and runs them in
    per-sender FIFO lanes, so one sender's messages are processed in receipt order while
    different senders proceed concurrently.
  - pkg/session guards sessions with a reference-counted mutex map and an optional
    distributed lock for multi-replica deployments.
  - pkg/adapters holds the edges: the chi webhook, session stores (memory, Redis, file),
    record sinks (Excel, DynamoDB, memory) and the ClickSend SMS sender.

# Usage

The intake binary wires everything from configuration:

	intake serve --config intake.yaml
	intake chat

See internal/config for the environment variables, which keep the names used by
earlier deployments (CLICKSEND_USERNAME, REDIS_HOST, EXCEL_FILE, TIMEOUT_SECONDS, ...).
*/
package intake
