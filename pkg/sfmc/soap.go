package sfmc

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Helpers for the Marketing Cloud SOAP (partner) API. Requests carry the
// Bearer token in the Authorization header and name the operation through
// the SOAPAction header; the body is a SOAP 1.2 envelope.

const soapServicePath = "Service.asmx"

// soapEnvelope wraps a partner-API request body in the standard envelope.
func soapEnvelope(body string) string {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope">`)
	b.WriteString(`<s:Body xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema">`)
	b.WriteString(body)
	b.WriteString(`</s:Body></s:Envelope>`)
	return b.String()
}

// retrieveRequest builds a RetrieveRequestMsg for one object type filtered
// on a single property with the equals operator.
func retrieveRequest(objectType string, properties []string, filterProperty, filterValue string) string {
	var b strings.Builder
	b.WriteString(`<RetrieveRequestMsg xmlns="http://exacttarget.com/wsdl/partnerAPI"><RetrieveRequest>`)
	b.WriteString("<ObjectType>" + xmlEscape(objectType) + "</ObjectType>")
	for _, p := range properties {
		b.WriteString("<Properties>" + xmlEscape(p) + "</Properties>")
	}
	b.WriteString(`<Filter xsi:type="SimpleFilterPart">`)
	b.WriteString("<Property>" + xmlEscape(filterProperty) + "</Property>")
	b.WriteString("<SimpleOperator>equals</SimpleOperator>")
	b.WriteString("<Value>" + xmlEscape(filterValue) + "</Value>")
	b.WriteString("</Filter></RetrieveRequest></RetrieveRequestMsg>")
	return b.String()
}

// retrieveEnvelope is the subset of a RetrieveResponseMsg we care about; T
// is the per-object Results element shape.
type retrieveEnvelope[T any] struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			OverallStatus string `xml:"OverallStatus"`
			Results       []T    `xml:"Results"`
		} `xml:"RetrieveResponseMsg"`
	} `xml:"Body"`
}

func parseRetrieveResponse[T any](body []byte) ([]T, string, error) {
	var env retrieveEnvelope[T]
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, "", fmt.Errorf("failed to parse SOAP response: %w", err)
	}
	return env.Body.Response.Results, env.Body.Response.OverallStatus, nil
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
