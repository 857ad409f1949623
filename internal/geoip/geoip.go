package geoip

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"

	"boxlink/internal/logger"
)

var ErrNotInitialized = errors.New("geoip database not initialized")

var (
	countryReader *geoip2.Reader
	asnReader     *geoip2.Reader
	once          sync.Once
	initErr       error
)

// Init loads the MMDB files. The country database is required; the ASN one
// is optional and only adds ISP names.
func Init(countryPath, asnPath string) error {
	once.Do(func() {
		var err error
		countryReader, err = geoip2.Open(countryPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open Country DB at %s: %w", countryPath, err)
			return
		}

		if asnPath != "" {
			asnReader, err = geoip2.Open(asnPath)
			if err != nil {
				logger.Log.Warnf("Failed to open ASN DB at %s: %v. ISP data will be missing.", asnPath, err)
			}
		}
	})
	return initErr
}

type GeoResult struct {
	ISP     string
	Country string
}

// Lookup resolves a literal IP; host names are not resolved.
func Lookup(ipStr string) (*GeoResult, error) {
	if countryReader == nil {
		return nil, ErrNotInitialized
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return nil, fmt.Errorf("invalid ip: %s", ipStr)
	}

	res := &GeoResult{ISP: "Unknown", Country: "XX"}
	if c, err := countryReader.Country(ip); err == nil && c.Country.IsoCode != "" {
		res.Country = c.Country.IsoCode
	}
	if asnReader != nil {
		if asn, err := asnReader.ASN(ip); err == nil {
			res.ISP = asn.AutonomousSystemOrganization
		}
	}
	return res, nil
}

func Close() {
	if countryReader != nil {
		countryReader.Close()
	}
	if asnReader != nil {
		asnReader.Close()
	}
}
