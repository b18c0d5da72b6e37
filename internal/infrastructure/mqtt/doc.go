// Package mqtt provides MQTT client connectivity for plantcore.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is the ingestion bus connecting plant sensor nodes to the
// processing pipeline, and the outbound channel for actuation commands.
//
//	Sensor nodes → MQTT Broker → plantcore → MQTT Broker → Actuators
//
// Plant nodes publish under planta/{plantId}/... and receive commands on
// planta/{plantId}/command. See the topics.go builders for the full scheme.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all plant readings
//	err = client.Subscribe(mqtt.Topics{}.AllReadings(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a command
//	topic := mqtt.Topics{}.PlantCommand("planta1")
//	client.Publish(topic, []byte(`{"cmd":"RIEGO"}`), 1, false)
package mqtt
