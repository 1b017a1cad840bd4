package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyMatchesThroughWrapping(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		fatal bool
	}{
		{"configuration", Missing("host"), IsConfiguration, true},
		{"credential", &CredentialError{Mode: "rsa_key", Err: cause}, IsCredential, true},
		{"connection", &ConnectionError{Addr: "h:22", Err: cause}, IsConnection, false},
		{"remote io", RemoteIO("delete", "/in/a.txt", cause), IsRemoteIO, false},
		{"parse", &ParseError{Source: "log.xml", Err: cause}, IsParse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("cycle: %w", tt.err)
			assert.True(t, tt.check(wrapped))
			assert.Equal(t, tt.fatal, IsFatal(wrapped))
		})
	}
}

func TestRemoteIOKeepsPath(t *testing.T) {
	err := RemoteIO("move", "/root/process/f.xml", errors.New("no such file"))
	assert.Contains(t, err.Error(), "/root/process/f.xml")
	assert.Nil(t, RemoteIO("move", "/x", nil))
}

func TestConfigurationErrorNamesField(t *testing.T) {
	assert.Equal(t, "configuration error: login is required", Missing("login").Error())
	assert.Equal(t, "configuration error: port: 21 is the FTP port", Invalid("port", "21 is the FTP port").Error())
}

func TestBatchReportAggregates(t *testing.T) {
	r := NewBatchReport("poll")
	r.Succeed("a.xml")
	r.Fail("b.xml", errors.New("gone"))
	r.Fail("c.xml", errors.New("denied"))

	assert.Equal(t, []string{"a.xml"}, r.Succeeded())
	assert.Equal(t, []string{"b.xml", "c.xml"}, r.Failed())
	assert.Error(t, r.Err())
	assert.Contains(t, r.Err().Error(), "b.xml: gone")
	assert.Equal(t, "poll: 1 ok, 2 failed", r.String())

	assert.NoError(t, NewBatchReport("empty").Err())
}

func TestBatchReportMerge(t *testing.T) {
	outer := NewBatchReport("logs")
	outer.Abort(errors.New("connect refused"))

	inner := NewBatchReport("pending")
	inner.Succeed("1.xml")
	inner.Fail("2.xml", errors.New("insert failed"))

	outer.Merge(inner)
	outer.Merge(nil)

	assert.Equal(t, []string{"1.xml"}, outer.Succeeded())
	assert.Equal(t, []string{"2.xml"}, outer.Failed())
	require.Error(t, outer.Err())
	assert.Contains(t, outer.Err().Error(), "connect refused")
	assert.Contains(t, outer.Err().Error(), "2.xml: insert failed")
}
