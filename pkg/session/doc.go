/*
Package session implements per-sender session access and locking.

The Manager guarantees that the read-modify-write cycle on one sender's session runs
under mutual exclusion, while different senders proceed independently. It combines an
in-process mutex per sender with an optional distributed lock for multi-replica
deployments, and delegates persistence to any ports.SessionStore.
*/
package session
