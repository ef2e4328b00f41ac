package player

import (
	"fmt"
	"strings"
	"time"

	"github.com/tip-cli/tip/host"
)

// osdEscaper keeps text from being read as ASS override tags.
var osdEscaper = strings.NewReplacer(`\`, `\\`, "{", `\{`, "}", `\}`)

// OSD is mpv's on-screen display for a configured video output.
type OSD struct {
	*host.Ref
	client *Client
}

var _ host.Output = (*OSD)(nil)

func newOSD(client *Client) *OSD {
	return &OSD{
		Ref:    host.NewRef("mpv osd", nil),
		client: client,
	}
}

// Display shows text in region for d. mpv positions it with the ASS \an tag, whose numbering
// follows the numeric keypad like host.Region does.
func (o *OSD) Display(region host.Region, d time.Duration, text string) error {
	if !region.Valid() {
		return fmt.Errorf("invalid osd region %d", region)
	}

	ass := fmt.Sprintf(`${osd-ass-cc/0}{\an%d}%s`, int(region), osdEscaper.Replace(text))
	if _, err := o.client.Command("show-text", ass, d.Milliseconds()); err != nil {
		return fmt.Errorf("show text: %w", err)
	}
	return nil
}
