/*
Package ports defines the driven ports (interfaces) of the dispatch engine.

These interfaces decouple routing from storage and coordination backends.

# Key Interfaces

  - StateStore: reads and writes the conversation state of a StateKey.
  - DistributedLocker: serializes updates of one conversation across replicas.

RunStateStoreContract is the shared test suite every StateStore adapter runs.
*/
package ports
