package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShippingAddressRoundTrip(t *testing.T) {
	addr := ShippingAddress{Street: "1 Main St", City: "Austin", State: "TX", ZipCode: "78701", Country: "US"}

	v, err := addr.Value()
	require.NoError(t, err)

	var decoded ShippingAddress
	require.NoError(t, decoded.Scan([]byte(v.(string))))
	require.Equal(t, addr, decoded)
	require.Equal(t, "1 Main St, Austin, TX, 78701, US", decoded.String())
}

func TestShippingAddressValidate(t *testing.T) {
	_, err := ShippingAddress{Street: "1 Main St", City: "Austin", State: "TX", Country: "US"}.Value()
	require.ErrorContains(t, err, "zipCode")

	var empty ShippingAddress
	require.NoError(t, empty.Scan(nil))
	require.Error(t, empty.Scan(42))
}
