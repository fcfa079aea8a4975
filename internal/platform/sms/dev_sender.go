package sms

import (
	"fmt"

	"github.com/festivo/festivo-api/pkg/logger"
)

// DevSender logs codes instead of sending them. A real deployment plugs a
// provider-backed Sender in its place.
type DevSender struct{}

func NewDevSender() *DevSender { return &DevSender{} }

func (d *DevSender) SendOTP(mobile, code string) error {
	logger.Info("[DEV SMS] one-time code", "to", mobile, "code", code)

	fmt.Printf("\n"+
		"=================================================\n"+
		" SMS (DEV MODE)\n"+
		"=================================================\n"+
		"To:   %s\n"+
		"Body: Your Festivo login code is %s\n"+
		"=================================================\n\n",
		mobile, code)

	return nil
}

var _ Sender = (*DevSender)(nil)
