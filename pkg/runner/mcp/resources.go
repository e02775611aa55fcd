package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerDevicesResource(srv, svc)
	registerDeviceTemplate(srv, svc)
	registerSummaryResource(srv, svc)
	registerSettingsResource(srv, svc)
}

func registerDevicesResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"nodewatch://devices",
		"Devices",
		mcp.WithResourceDescription("Every device on the monitored network with live rates."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		devices, err := svc.ListDevices(ctx, false)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"devices": devices,
			"count":   len(devices),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerDeviceTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"nodewatch://devices/{mac}",
		"Device Details",
		mcp.WithTemplateDescription("A single device, including its recent domains and block rule."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		mac, _ := request.Params.Arguments["mac"].(string)
		if mac == "" {
			return nil, fmt.Errorf("device mac is required")
		}

		dto, err := svc.Device(ctx, mac)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"device": dto,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerSummaryResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"nodewatch://summary",
		"Network Summary",
		mcp.WithResourceDescription("Link state, device counts, total rates and the kill switch."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		sum, err := svc.Summary(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, sum)
	})
}

func registerSettingsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"nodewatch://settings",
		"Scan Settings",
		mcp.WithResourceDescription("The backend's scan interface, interval and paranoid mode."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		view, err := svc.Settings(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, view)
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
