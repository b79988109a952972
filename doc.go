/*

Package payout defines the data model and the external collaborator
interfaces of the payout commit/execution engine: payment items and their
status lifecycle, batches flowing through the work queue, the executor
that performs the actual transfers and the ambient guards around the
worker loop. Look into this package to get a brief overview of the design
decisions made around interfaces and building blocks.

*/

package payout
