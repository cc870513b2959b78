// Package setup provisions the runtime environment for acfileserver:
// the shared files directory, the state directory, and the active .env
// file copied from .env.example.
//
// Provisioning is idempotent: artifacts that already exist are left
// untouched and re-running against a provisioned tree is a no-op. On any
// failure, every artifact created during the same run is removed in
// reverse order before the error is reported, so a half-provisioned tree
// never survives. A missing .env.example while no .env exists is fatal:
// continuing would start the server on default credentials without the
// operator ever seeing a config file to edit.
package setup
