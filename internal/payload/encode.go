package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"
)

// Body is an encoded request body.
type Body struct {
	ContentType string
	Data        []byte
}

// Encode serializes req. Requests with an attachment are sent as multipart
// form data; everything else as JSON.
func Encode(req Request) (Body, error) {
	if req.Transfer != nil {
		return encodeJSON(req.Transfer)
	}
	if req.Transaction == nil {
		return Body{}, fmt.Errorf("encoding request for %s: empty request", req.Endpoint)
	}
	if req.Attachment == nil {
		return encodeJSON(req.Transaction)
	}
	return encodeMultipart(req)
}

func encodeJSON(v any) (Body, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Body{}, fmt.Errorf("encoding JSON body: %w", err)
	}
	return Body{ContentType: "application/json", Data: data}, nil
}

// encodeMultipart writes date, contact and contact_account as plain fields,
// the attachment as "image", and accounts pre-serialized to a JSON string.
func encodeMultipart(req Request) (Body, error) {
	txn := req.Transaction

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{{"date", txn.Date}}
	if txn.Contact != nil {
		fields = append(fields, [2]string{"contact", *txn.Contact})
	}
	if txn.ContactAccount != nil {
		fields = append(fields, [2]string{"contact_account", *txn.ContactAccount})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return Body{}, fmt.Errorf("writing field %s: %w", f[0], err)
		}
	}

	name := req.Attachment.Name
	if name == "" {
		name = "receipt"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(filepath.Base(name))))
	h.Set("Content-Type", attachmentType(req.Attachment.ContentType, name))
	part, err := mw.CreatePart(h)
	if err != nil {
		return Body{}, fmt.Errorf("creating image part: %w", err)
	}
	if _, err := part.Write(req.Attachment.Data); err != nil {
		return Body{}, fmt.Errorf("writing image part: %w", err)
	}

	accounts, err := json.Marshal(txn.Accounts)
	if err != nil {
		return Body{}, fmt.Errorf("encoding accounts: %w", err)
	}
	if err := mw.WriteField("accounts", string(accounts)); err != nil {
		return Body{}, fmt.Errorf("writing field accounts: %w", err)
	}

	if err := mw.Close(); err != nil {
		return Body{}, fmt.Errorf("closing multipart body: %w", err)
	}
	return Body{ContentType: mw.FormDataContentType(), Data: buf.Bytes()}, nil
}

func attachmentType(declared, name string) string {
	if declared != "" {
		return declared
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
