/*
Package store is SPEC_FULL.md's C3: typed queries and transactions over
the relational store. The query functions accept a DBTX so callers
choose between the pool (autocommit reads, guarded single-statement
writes) and a transaction handle (composed writes, e.g. a whole setup
orchestration); ReserveIP alone requires a pgx.Tx. Ownership scoping is enforced in the SQL itself — every
server-centric query joins through services.user_id.
*/
package store
