package uploads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSignedUploadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/storage/v1/object/upload/sign/diamond-images/"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"signedUrl":"https://signed.example/upload"}`))
	}))
	defer srv.Close()

	c := &HTTPClient{BaseURL: srv.URL, SecretKey: "service-key"}
	url, err := c.CreateSignedUploadURL(context.Background(), BucketDiamondImages, "abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/upload", url)
}

func TestCreateSignedUploadURL_RelativeURLResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url":"storage/v1/object/upload/sign/x?token=t"}`))
	}))
	defer srv.Close()

	c := &HTTPClient{BaseURL: srv.URL, SecretKey: "service-key"}
	url, err := c.CreateSignedUploadURL(context.Background(), BucketDiamondImages, "abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/storage/v1/object/upload/sign/x?token=t", url)
}

func TestCreateSignedUploadURL_MissingConfig(t *testing.T) {
	c := &HTTPClient{}
	_, err := c.CreateSignedUploadURL(context.Background(), BucketDiamondImages, "abc.jpg")
	assert.Error(t, err)

	c = &HTTPClient{BaseURL: "https://example.supabase.co"}
	_, err = c.CreateSignedUploadURL(context.Background(), BucketDiamondImages, "abc.jpg")
	assert.Error(t, err)
}

func TestCreateSignedUploadURL_AnonKeyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid Compact JWS"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := &HTTPClient{BaseURL: srv.URL, SecretKey: "anon-key"}
	_, err := c.CreateSignedUploadURL(context.Background(), BucketDiamondImages, "abc.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service_role")
}

func TestGetSignedUploadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"signedUrl":"https://signed.example/upload"}`))
	}))
	defer srv.Close()

	svc := &Service{
		Client:      &HTTPClient{BaseURL: srv.URL, SecretKey: "service-key"},
		SupabaseURL: "https://example.supabase.co",
	}
	res, err := svc.GetSignedUploadURL(context.Background(), BucketCertificates, "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/upload", res.UploadURL)
	assert.True(t, strings.HasSuffix(res.Path, ".pdf"))
	assert.Equal(t, "https://example.supabase.co/storage/v1/object/public/certificates/"+res.Path, res.PublicURL)
}
