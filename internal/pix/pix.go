// Package pix builds static PIX "copia e cola" payloads (BR Code) so players can
// pay the organizer by pasting one string into their banking app.
//
// The payload is the EMV merchant-presented-mode format adopted by the Banco
// Central do Brasil: a flat sequence of ID-length-value fields ending in a
// CRC16 checksum. No money moves through this API — the string just encodes the
// organizer's PIX key, the event price, and display metadata.
package pix

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// EMV field IDs used by a static PIX charge.
const (
	idPayloadFormat       = "00"
	idMerchantAccountInfo = "26"
	idMerchantCategory    = "52"
	idCurrency            = "53"
	idAmount              = "54"
	idCountryCode         = "58"
	idMerchantName        = "59"
	idMerchantCity        = "60"
	idAdditionalData      = "62"
	idCRC                 = "63"

	// Inside the merchant account info template.
	idGUI    = "00"
	idPixKey = "01"
	// Inside the additional data template.
	idTxID = "05"

	pixGUI       = "br.gov.bcb.pix"
	currencyBRL  = "986" // ISO 4217 numeric code for the real
	categoryNone = "0000"

	// EMV caps these display fields; banking apps reject longer values.
	maxNameLen = 25
	maxCityLen = 15
)

// ErrMissingKey is returned when the charge has no PIX key to encode.
var ErrMissingKey = errors.New("pix: charge has no key")

// Charge describes one static PIX charge.
type Charge struct {
	Key          string // The receiving PIX key (CPF, phone, email, or random key)
	MerchantName string // Who gets paid — shown by the payer's bank
	City         string // Merchant city, required by the EMV format
	AmountCents  int    // Price in centavos; 0 produces an open-amount charge
	TxID         string // Transaction identifier; "***" (any) when empty
}

// Payload renders the full copia-e-cola string, checksum included.
// The output is deterministic: the same charge always produces the same string.
func (c Charge) Payload() (string, error) {
	if c.Key == "" {
		return "", ErrMissingKey
	}

	txid := c.TxID
	if txid == "" {
		// "***" is the BCB convention for "any transaction" on static codes.
		txid = "***"
	}

	var b strings.Builder
	b.WriteString(tlv(idPayloadFormat, "01"))
	b.WriteString(tlv(idMerchantAccountInfo, tlv(idGUI, pixGUI)+tlv(idPixKey, c.Key)))
	b.WriteString(tlv(idMerchantCategory, categoryNone))
	b.WriteString(tlv(idCurrency, currencyBRL))
	if c.AmountCents > 0 {
		// Decimal string with two places, e.g. 1500 → "15.00".
		amount := fmt.Sprintf("%d.%02d", c.AmountCents/100, c.AmountCents%100)
		b.WriteString(tlv(idAmount, amount))
	}
	b.WriteString(tlv(idCountryCode, "BR"))
	b.WriteString(tlv(idMerchantName, truncate(c.MerchantName, maxNameLen)))
	b.WriteString(tlv(idMerchantCity, truncate(c.City, maxCityLen)))
	b.WriteString(tlv(idAdditionalData, tlv(idTxID, txid)))

	// The CRC field covers everything before it PLUS its own ID and length.
	payload := b.String() + idCRC + "04"
	return payload + fmt.Sprintf("%04X", CRC16(payload)), nil
}

// tlv renders one ID-length-value field. The length is always two decimal
// digits, which caps values at 99 bytes — fine for every field we emit.
func tlv(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// truncate cuts s to at most n bytes, backing off to the nearest rune boundary.
// The EMV limits are byte limits (tlv lengths count bytes), but organizer names
// and cities are free text — "São Paulo" must not get sliced mid-rune into an
// invalid UTF-8 payload.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// CRC16 computes the CRC-16/CCITT-FALSE checksum (polynomial 0x1021, initial
// value 0xFFFF) the EMV spec requires for the trailing field.
func CRC16(data string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
