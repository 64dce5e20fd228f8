package pix_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pelada-hub/pelada-api/internal/pix"
)

func TestPayload(t *testing.T) {
	Convey("Given a typical pelada charge", t, func() {
		charge := pix.Charge{
			Key:          "123e4567-e12b-12d1-a456-426655440000",
			MerchantName: "Fulano de Tal",
			City:         "BRASILIA",
			AmountCents:  1000,
		}

		Convey("The payload lays out the EMV fields in order", func() {
			got, err := charge.Payload()
			So(err, ShouldBeNil)

			wantPrefix := "000201" +
				"26580014br.gov.bcb.pix0136123e4567-e12b-12d1-a456-426655440000" +
				"52040000" +
				"5303986" +
				"540510.00" +
				"5802BR" +
				"5913Fulano de Tal" +
				"6008BRASILIA" +
				"62070503***" +
				"6304"
			So(got[:len(got)-4], ShouldEqual, wantPrefix)

			Convey("And the trailing checksum covers everything before it", func() {
				So(got[len(got)-4:], ShouldEqual, fmt.Sprintf("%04X", pix.CRC16(got[:len(got)-4])))
			})
		})

		Convey("The same charge always renders the same string", func() {
			a, err := charge.Payload()
			So(err, ShouldBeNil)
			b, err := charge.Payload()
			So(err, ShouldBeNil)
			So(a, ShouldEqual, b)
		})
	})

	Convey("Given a charge with no fixed price", t, func() {
		charge := pix.Charge{Key: "organizer@example.com", MerchantName: "Pelada", City: "SAO PAULO"}

		Convey("The amount field is omitted entirely", func() {
			got, err := charge.Payload()
			So(err, ShouldBeNil)
			// The currency field runs straight into the country code.
			So(got, ShouldContainSubstring, "53039865802BR")
		})
	})

	Convey("Given overlong display fields", t, func() {
		charge := pix.Charge{
			Key:          "organizer@example.com",
			MerchantName: strings.Repeat("a", 40),
			City:         strings.Repeat("b", 20),
			TxID:         "PELADA123",
		}

		Convey("Name and city are truncated to the EMV caps", func() {
			got, err := charge.Payload()
			So(err, ShouldBeNil)
			So(got, ShouldContainSubstring, "5925"+strings.Repeat("a", 25))
			So(got, ShouldContainSubstring, "6015"+strings.Repeat("b", 15))
			So(got, ShouldContainSubstring, "0509PELADA123")
		})
	})

	Convey("Given accented display fields past the byte caps", t, func() {
		charge := pix.Charge{
			Key:          "organizer@example.com",
			MerchantName: "João " + strings.Repeat("ã", 15), // 36 bytes
			City:         strings.Repeat("ã", 10),           // 20 bytes
		}

		Convey("Truncation backs off to a rune boundary, keeping the payload valid UTF-8", func() {
			got, err := charge.Payload()
			So(err, ShouldBeNil)
			So(utf8.ValidString(got), ShouldBeTrue)
			// 25 bytes would land mid-rune, so the name stops at 24;
			// the city's cap of 15 likewise backs off to 14.
			So(got, ShouldContainSubstring, "5924João "+strings.Repeat("ã", 9))
			So(got, ShouldContainSubstring, "6014"+strings.Repeat("ã", 7))
		})
	})

	Convey("Given a charge with no key", t, func() {
		_, err := pix.Charge{}.Payload()
		So(err, ShouldEqual, pix.ErrMissingKey)
	})
}

func TestCRC16(t *testing.T) {
	Convey("The checksum is CRC-16/CCITT-FALSE", t, func() {
		// Standard check value for this CRC variant.
		So(pix.CRC16("123456789"), ShouldEqual, uint16(0x29B1))
	})
}
