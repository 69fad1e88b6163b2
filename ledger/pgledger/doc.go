// Package pgledger serves the DID ledger read capability from a
// Postgres mirror of the chain maintained by an external indexer.
//
// Expected schema (table names are configurable):
//
//	did_blocks(hash bytea primary key, number bigint not null, api_version integer not null)
//	did_attribute_history(account bytea, name bytea, value bytea, validity bigint,
//	                      created bigint, block_number bigint, removed boolean)
//
// Every write or removal of an attribute is one history row tagged
// with the block it landed in. The attribute as of block n is the
// newest row with block_number <= n; a removed row reads as absent.
//
// The package never writes; populating the mirror is the indexer's
// job.
package pgledger
