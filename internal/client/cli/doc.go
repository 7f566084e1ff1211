// Package cli provides the interactive signmanager command-line client.
//
// Commands: register, login, whoami, logout, ping, help, exit. Passwords are
// read from the terminal without echo and wiped after use; the access token
// lives only in memory for the lifetime of the process.
package cli
