// File: utils/constants.go
package utils

// SessionKeyPrefix namespaces client keys when they live in a shared Redis.
const SessionKeyPrefix = "salonai:"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"
