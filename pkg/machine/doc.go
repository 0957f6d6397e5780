/*
Package machine implements the intake dialog as a pure transition function.

Each dialog state maps to a single rule in a table. A rule reads the sender's text and
returns the next state, the key of the message to reply with, and the answers to record.
Nothing here touches the clock, the store or the network, so every transition can be
exercised directly:

	res, err := machine.Transition(*session, "María López")
	// res.Next == domain.StateAwaitingHonoree
	// res.Updates.FirstName == "María"

Invalid answers are not errors. They leave the state where it was and select one of the
invalid_* messages so the sender is prompted again.
*/
package machine
