package client

import (
	"strings"
	"testing"

	"github.com/chipsenkbeil/over-there-sub000/msg"
)

func TestDescribeErrorReplyKinds(t *testing.T) {
	generic, _ := msg.NewRequest(msg.KindGenericErrorReply, msg.GenericErrorReplyArgs{Msg: "boom"})
	ioErr, _ := msg.NewRequest(msg.KindIoErrorReply, msg.IoErrorReplyArgs{Kind: "NotFound", Description: "no such file"})
	sig, _ := msg.NewRequest(msg.KindFileSigChangedReply, msg.FileSigChangedReplyArgs{ID: 3, Sig: 44})
	ok, _ := msg.NewRequest(msg.KindHeartbeatReply, msg.HeartbeatReplyArgs{})

	if desc, failed := describeErrorReply(generic); !failed || desc != "boom" {
		t.Fatalf("generic: %q/%v", desc, failed)
	}
	if desc, failed := describeErrorReply(ioErr); !failed || !strings.Contains(desc, "NotFound") {
		t.Fatalf("io: %q/%v", desc, failed)
	}
	if desc, failed := describeErrorReply(sig); !failed || !strings.Contains(desc, "44") {
		t.Fatalf("sig: %q/%v", desc, failed)
	}
	if _, failed := describeErrorReply(ok); failed {
		t.Fatal("a success reply must not be described as a failure")
	}
}
