package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/opd-ai/peerchat/registry"
	"github.com/stretchr/testify/assert"
)

func TestMenuListsEveryCommand(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out).Menu()

	for _, cmd := range []string{"help", "myip", "myport", "connect", "list", "terminate", "send", "exit"} {
		assert.Contains(t, out.String(), cmd)
	}
}

func TestMessageBlockIsVerbatim(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out).Message("10.0.0.5", 40123, []byte("hi\tthere\x07\r"))

	got := out.String()
	assert.Contains(t, got, "* Message received from: 10.0.0.5\n")
	assert.Contains(t, got, "* Sender's port: 40123\n")
	assert.Contains(t, got, "* Content: hi\tthere\x07\r\n")
	assert.Equal(t, 2, strings.Count(got, banner))
}

func TestTableEmpty(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out).Table(nil)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Equal(t, []string{banner, "ID |        IP Address        | Port No.", banner}, lines)
}

func TestTableRows(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out).Table([]registry.Entry{
		{ID: 0, IP: "127.0.0.1", Port: 51000},
		{ID: 1, IP: "10.1.1.1", Port: 9000},
	})

	got := out.String()
	assert.Contains(t, got, divider)
	assert.Contains(t, got, "0  |      127.0.0.1      |  51000\n")
	assert.Contains(t, got, "1  |      10.1.1.1      |  9000\n")
}

func TestPrintfAddsNewline(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)
	p.Printf("Listening port of this app: %d", 9000)
	p.Prompt()

	assert.Equal(t, "Listening port of this app: 9000\n"+Prompt+"\n", out.String())
}
