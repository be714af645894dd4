// Package record defines the persisted credential record and its JSON codec.
//
// # Wire format
//
//	{"email":"a@b.com","uid":"…","password":"<base64 hash>","version":1}
//
// Version 1 records are hashed with the process-wide salt. Version 2 records
// carry their own base64 "salt" field. The password field always holds the
// derived hash, never a plaintext password.
//
// # What this package must NOT do
//
//   - Import goCred or perform storage I/O.
//   - Derive or compare password hashes.
package record
