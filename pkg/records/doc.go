// Package records stores owned records, one storage slot per record id.
//
// A record carries the identity that created it. Only that owner may update
// or delete the record. Create is open to any caller and replaces whatever
// was stored under the id, owner included.
package records
