/*
Package conversation runs the intake dialog for inbound messages.

A Dispatcher applies one message to its sender's session: it loads or creates the session,
runs the state machine, replies by SMS, and either persists the session or, on completion,
appends the Record to the sink and removes the session. The whole cycle runs under the
sender's lock from session.Manager.

A Queue sits in front of the Dispatcher so webhook handlers never wait on a step. Each
sender gets a FIFO lane drained by its own goroutine, which keeps one sender's messages in
receipt order while different senders progress concurrently.

Failures of the SMS gateway or the record sink are logged and never retried. Once a
session completes it is deleted even if the record could not be appended.
*/
package conversation
