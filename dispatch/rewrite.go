package dispatch

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/chipsenkbeil/over-there-sub000/msg"
)

// applyRewriteRules substitutes values from reply into pending, one rule
// at a time: each rule's Value path is resolved against reply's arguments, and the extracted scalar is spliced into pending's
// arguments at the rule's Path. A rule whose Path does not match anything
// in pending is skipped -- the request is left unchanged for that rule,
// not an error. Any other failure aborts and is returned to the caller,
// which folds it into the composite's partial-results-plus-error reply.
func applyRewriteRules(pending, reply *msg.Msg, rules []msg.PathRewriteRule) (*msg.Msg, error) {
	if len(rules) == 0 {
		return pending, nil
	}

	replyDoc, err := toJSONDoc(reply)
	if err != nil {
		return nil, fmt.Errorf("dispatch: rewrite source: %w", err)
	}
	reqDoc, err := toJSONDoc(pending)
	if err != nil {
		return nil, fmt.Errorf("dispatch: rewrite target: %w", err)
	}

	changed := false
	for _, rule := range rules {
		next, applied, err := applyRule(reqDoc, replyDoc, rule)
		if err != nil {
			return nil, err
		}
		if applied {
			reqDoc = next
			changed = true
		}
	}
	if !changed {
		return pending, nil
	}

	newArgs, ok := newArgs(pending.Kind)
	if !ok {
		return nil, fmt.Errorf("dispatch: rewrite target: %w", &UnknownKind{Kind: pending.Kind})
	}
	payload := gjson.Get(reqDoc, "payload").Raw
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(payload, newArgs); err != nil {
		return nil, fmt.Errorf("dispatch: rewrite target: decode rewritten args: %w", err)
	}
	return pending.WithArgs(newArgs)
}

// applyRule evaluates one rule against reqDoc/replyDoc, both JSON documents
// of the form {"payload": <args>}. It returns the (possibly unchanged)
// reqDoc, whether a substitution actually happened, and an error for a
// missing value, a non-scalar value, or a value that cannot be set at the
// target path.
func applyRule(reqDoc, replyDoc string, rule msg.PathRewriteRule) (string, bool, error) {
	valuePath := jsonPath(rule.Value)
	extracted := gjson.Get(replyDoc, valuePath)
	if !extracted.Exists() {
		return reqDoc, false, &RewriteValueNotFound{Path: rule.Value}
	}
	if extracted.IsObject() || extracted.IsArray() {
		return reqDoc, false, &RewriteValueNotScalar{Path: rule.Value}
	}

	targetPath := jsonPath(rule.Path)
	if !gjson.Get(reqDoc, targetPath).Exists() {
		return reqDoc, false, nil
	}

	next, err := sjson.Set(reqDoc, targetPath, extracted.Value())
	if err != nil {
		return reqDoc, false, &RewriteIncompatible{Path: rule.Path, Cause: err}
	}
	return next, true, nil
}

// jsonPath strips the JSONPath "$." root that rule paths use; gjson and
// sjson address documents with bare dotted paths and have no "$" sigil of
// their own.
func jsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	return strings.TrimPrefix(path, ".")
}

// toJSONDoc renders m's typed args as {"payload": ...}, the shape every
// rewrite rule's path is rooted at.
func toJSONDoc(m *msg.Msg) (string, error) {
	proto, ok := newArgs(m.Kind)
	if !ok {
		return "", &UnknownKind{Kind: m.Kind}
	}
	if err := m.DecodeArgs(proto); err != nil {
		return "", err
	}
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(proto)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`{"payload":%s}`, b), nil
}
