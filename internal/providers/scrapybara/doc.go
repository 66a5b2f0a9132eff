/*
Package scrapybara implements the client adapter for the Scrapybara
remote desktop/browser automation API.

# Overview

The adapter owns all HTTP communication with the provider: instance
provisioning and teardown, input injection (mouse, keyboard, scroll,
wait), screenshots, and browser navigation. Callers never see the wire
protocol; they hold an opaque Instance and invoke typed operations.

No retries are performed at this layer. A provider-side failure maps to
*errdefs.ProviderError (or *errdefs.ProvisioningError for Start) with
the provider's message forwarded, and surfaces directly to the caller.

# Usage

	client := scrapybara.New(scrapybara.Config{
	    BaseURL: cfg.Provider.BaseURL,
	    APIKey:  cfg.Provider.APIKey,
	    Timeout: cfg.Provider.Timeout,
	})

	inst, err := client.Start(ctx, scrapybara.InstanceBrowser)
	if err != nil {
	    return err
	}
	defer inst.Stop(ctx)

	shot, err := inst.Screenshot(ctx)
*/
package scrapybara
