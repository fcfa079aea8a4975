// Package sms abstracts one-time-code delivery to a mobile number.
package sms

type Sender interface {
	SendOTP(mobile, code string) error
}
