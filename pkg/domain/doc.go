/*
Package domain holds the core records and value types of the bakecake
dialogue: customers, the option catalog, cakes, orders, session state and the
error taxonomy shared by the engine and its adapters.

The package has no dependencies on storage or transports; everything here is
plain data plus the few invariant-preserving methods that belong to it.
*/
package domain
