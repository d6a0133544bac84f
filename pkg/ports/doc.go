/*
Package ports defines the driven ports (interfaces) for the bakecake engine.

These interfaces decouple the dialogue core from external implementations,
allowing it to work with various storage backends (in-memory, filesystem,
Redis, Postgres) without changes to the flow logic.

# Key Interfaces

  - ProfileStore: customer records with get-or-create by chat identity.
  - Catalog: read-only ordered option categories.
  - CakeStore / OrderStore: draft cakes and orders.
  - SessionStore: per-identity conversation snapshots.
*/
package ports
